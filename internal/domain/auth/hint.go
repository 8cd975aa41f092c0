package auth

import "strings"

// Metadata keys read from provider profile metadata.
const (
	metaIsOrganizer = "isOrganizer"
	metaIsSeller    = "isSeller"
	metaRole        = "role"
)

// HintFromMetadata builds a RoleHint from provider public and unsafe metadata.
// Non-boolean flags are ignored; the unsafe role is kept only when it is a string.
func HintFromMetadata(public, unsafe map[string]any) RoleHint {
	var h RoleHint
	if b, ok := public[metaIsOrganizer].(bool); ok {
		h.IsOrganizer = &b
	}
	if b, ok := public[metaIsSeller].(bool); ok {
		h.IsSeller = &b
	}
	if s, ok := unsafe[metaRole].(string); ok {
		h.UnsafeRole = strings.TrimSpace(s)
	}
	return h
}
