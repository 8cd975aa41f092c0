package errors

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column list from "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// constraintSuffixes are the naming conventions Postgres and our migrations use.
var constraintSuffixes = []string{"_key", "_unique", "_idx", "_check", "_fkey"}

// MapDBError maps database errors to AppError instances:
//   - context deadline/cancel → Timeout/Canceled
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict (with Field when derivable)
//   - check and NOT NULL violations → Validation
//   - foreign key violations → ForeignKey
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists.",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation:
		return validationFromPg(pgErr, "This field has an invalid value.", "Invalid data. Please check your input.")
	case pgerrcode.NotNullViolation:
		return validationFromPg(pgErr, "This field is required.", "Required field is missing. Please check your input.")
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: "Cannot complete operation because a referenced " + tableLabel(pgErr.TableName) + " is missing or in use.",
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

func validationFromPg(pgErr *pgconn.PgError, fieldMsg, genericMsg string) error {
	field := pgErr.ColumnName
	if field == "" && pgErr.Code == pgerrcode.CheckViolation {
		field = inferFieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)
	}
	if field != "" {
		return &AppError{Code: ErrCodeValidation, Message: fieldMsg, Field: field, Cause: pgErr}
	}
	return &AppError{Code: ErrCodeValidation, Message: genericMsg, Cause: pgErr}
}

// uniqueViolationField prefers column metadata, then the Detail key list,
// then the constraint name.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return inferFieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)
}

// inferFieldFromConstraint derives a column from names like
// "users_external_user_id_key" → "external_user_id".
// The table prefix is taken from table when known, otherwise the first segment.
// Returns "" when the remainder is empty or looks like an expression index.
func inferFieldFromConstraint(table, constraint string) string {
	name := strings.ToLower(strings.TrimSpace(constraint))
	if name == "" {
		return ""
	}

	trimmed := false
	for _, suffix := range constraintSuffixes {
		if rest, ok := strings.CutSuffix(name, suffix); ok {
			name, trimmed = rest, true
			break
		}
	}
	if !trimmed {
		return ""
	}

	if table = strings.ToLower(strings.TrimSpace(table)); table != "" {
		rest, ok := strings.CutPrefix(name, table+"_")
		if !ok {
			return ""
		}
		name = rest
	} else {
		_, rest, ok := strings.Cut(name, "_")
		if !ok {
			return ""
		}
		name = rest
	}

	if name == "" || isFunctionName(name) {
		return ""
	}
	return name
}

// tableLabel turns a table name into a readable singular label.
func tableLabel(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if table == "" {
		return "record"
	}
	return strings.TrimSuffix(strings.ReplaceAll(table, "_", " "), "s")
}

// isFunctionName reports whether s is a SQL function commonly used in expression indexes.
func isFunctionName(s string) bool {
	return slices.Contains([]string{
		"lower", "upper", "trim", "ltrim", "rtrim",
		"md5", "sha1", "sha256", "encode", "decode",
	}, strings.ToLower(s))
}
