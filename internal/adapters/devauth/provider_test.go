package devauth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stepperslife/tickets/internal/ports"
)

func testUsers() []User {
	return []User{
		{ID: "dev-user", Email: "dev@example.com", Name: "Dev User", Groups: []string{"users"}},
		{ID: "dev-org", Email: "org@example.com", Name: "Org Anizer", Groups: []string{"organizer"}},
	}
}

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{Users: testUsers()})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(authURL, "/auth/callback?") {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
	if state == "" || nonce == "" {
		t.Fatal("state and nonce should be generated")
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse authURL: %v", err)
	}
	if got := u.Query().Get("state"); got != state {
		t.Fatalf("state in URL = %q, want %q", got, state)
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: u.Query().Get("code"), State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.UserID != "dev-user" || id.PrimaryEmail() != "dev@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.FirstName != "Dev" || id.LastName != "User" {
		t.Fatalf("unexpected name split: %+v", id)
	}
}

func TestProvider_LoginHintSelectsUser(t *testing.T) {
	prov, err := NewProvider(Config{Users: testUsers()})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	authURL, _, _, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/", LoginHint: "ORG@example.com"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.Contains(authURL, "code=dev-org") {
		t.Fatalf("expected organizer user in %s", authURL)
	}

	if _, _, _, err := prov.Begin(context.Background(), ports.BeginInput{LoginHint: "nobody@example.com"}); err == nil {
		t.Fatal("expected error for unknown login hint")
	}
}

func TestProvider_ExchangeUnknownCode(t *testing.T) {
	prov, err := NewProvider(Config{Users: testUsers()})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "ghost"}); err == nil {
		t.Fatal("expected error for unknown code")
	}
}

func TestNewProvider_Validation(t *testing.T) {
	cases := map[string]Config{
		"no users":     {},
		"missing id":   {Users: []User{{Email: "a@x.com"}}},
		"missing mail": {Users: []User{{ID: "a"}}},
		"duplicate":    {Users: []User{{ID: "a", Email: "a@x.com"}, {ID: "a", Email: "b@x.com"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewProvider(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseUsers(t *testing.T) {
	users, err := ParseUsers(" admin-1|admin@example.com|Site Admin|admins ; org-1|org@example.com|Org|organizer,staff;cust-1|c@example.com ;")
	if err != nil {
		t.Fatalf("ParseUsers error: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].ID != "admin-1" || users[0].Name != "Site Admin" || len(users[0].Groups) != 1 {
		t.Fatalf("unexpected first user: %+v", users[0])
	}
	if users[1].Hint.IsOrganizer == nil || !*users[1].Hint.IsOrganizer {
		t.Fatalf("organizer group should set hint: %+v", users[1])
	}
	if users[2].Name != "" || users[2].Groups != nil {
		t.Fatalf("unexpected optional fields: %+v", users[2])
	}

	for _, bad := range []string{"only-id", "a|b|c|d|e", "|x@example.com"} {
		if _, err := ParseUsers(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
