package devauth

// Package devauth provides a config-driven IdentityProvider for local development.
// It replaces a hardcoded list of test accounts with users supplied through configuration.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/ports"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// User is a single configured development account.
type User struct {
	ID     string
	Email  string
	Name   string
	Groups []string
	Hint   domainauth.RoleHint
}

// Config controls the dev auth provider behavior.
type Config struct {
	Users           []User        // at least one entry; the first is the default
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce. The selected user's id travels as the code.
type Provider struct {
	users           []User
	sessionDuration time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.Users) == 0 {
		return nil, errors.New("dev auth: at least one user is required")
	}
	seen := make(map[string]struct{}, len(cfg.Users))
	for i, u := range cfg.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("dev auth: user %d: id is required", i)
		}
		if u.Email == "" {
			return nil, fmt.Errorf("dev auth: user %q: email is required", u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("dev auth: duplicate user id %q", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{users: append([]User(nil), cfg.Users...), sessionDuration: dur}, nil
}

// Begin picks the user whose email matches in.LoginHint (the first user otherwise) and
// returns a local callback URL with cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	user := p.users[0]
	if hint := strings.TrimSpace(in.LoginHint); hint != "" {
		found, ok := p.byEmail(hint)
		if !ok {
			return "", "", "", fmt.Errorf("dev auth: no user with email %q", hint)
		}
		user = found
	}

	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	q := url.Values{}
	q.Set("code", user.ID)
	q.Set("state", state)
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange resolves the code to a configured user. State and nonce are validated by the handler.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	for _, u := range p.users {
		if u.ID == in.Code {
			return p.identity(u), nil
		}
	}
	return domainauth.Identity{}, fmt.Errorf("dev auth: unknown user %q", in.Code)
}

// Users returns the configured accounts.
func (p *Provider) Users() []User {
	return append([]User(nil), p.users...)
}

func (p *Provider) byEmail(email string) (User, bool) {
	for _, u := range p.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return User{}, false
}

func (p *Provider) identity(u User) domainauth.Identity {
	first, last, _ := strings.Cut(u.Name, " ")
	return domainauth.Identity{
		UserID:    u.ID,
		FullName:  u.Name,
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Emails:    []string{u.Email},
		Groups:    append([]string(nil), u.Groups...),
		Hint:      u.Hint,
		ExpiresAt: time.Now().Add(p.sessionDuration),
	}
}

// ParseUsers parses DEV_AUTH_USERS: entries separated by ';', each
// "id|email|name|group1,group2". Name and groups are optional.
// A group named "organizer" or "organizers" also sets the organizer hint so routing can be exercised.
func ParseUsers(raw string) ([]User, error) {
	var users []User
	for entry := range strings.SplitSeq(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) < 2 || len(parts) > 4 {
			return nil, fmt.Errorf("dev auth: malformed user entry %q", entry)
		}
		u := User{ID: strings.TrimSpace(parts[0]), Email: strings.TrimSpace(parts[1])}
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("dev auth: user entry %q needs id and email", entry)
		}
		if len(parts) > 2 {
			u.Name = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			for g := range strings.SplitSeq(parts[3], ",") {
				if g = strings.TrimSpace(g); g != "" {
					u.Groups = append(u.Groups, g)
				}
			}
		}
		if slices.ContainsFunc(u.Groups, isOrganizerGroup) {
			organizer := true
			u.Hint.IsOrganizer = &organizer
		}
		users = append(users, u)
	}
	return users, nil
}

func isOrganizerGroup(g string) bool {
	return g == "organizer" || g == "organizers"
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
