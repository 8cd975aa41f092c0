package usersync

import (
	"testing"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stretchr/testify/assert"
)

func TestBuildSyncRecord(t *testing.T) {
	tests := []struct {
		name string
		id   domainauth.Identity
		want SyncRecord
	}{
		{
			name: "first and last",
			id:   domainauth.Identity{UserID: "u1", FirstName: "Ada", LastName: "Lovelace", Emails: []string{"ada@x.com"}},
			want: SyncRecord{ExternalUserID: "u1", Name: "Ada Lovelace", Email: "ada@x.com"},
		},
		{
			name: "full name wins",
			id:   domainauth.Identity{UserID: "u1", FullName: "Countess Ada", FirstName: "Ada", Emails: []string{"ada@x.com"}},
			want: SyncRecord{ExternalUserID: "u1", Name: "Countess Ada", Email: "ada@x.com"},
		},
		{
			name: "first only",
			id:   domainauth.Identity{UserID: "u1", FirstName: "Ada"},
			want: SyncRecord{ExternalUserID: "u1", Name: "Ada", Email: ""},
		},
		{
			name: "email local part",
			id:   domainauth.Identity{UserID: "u2", Emails: []string{"bob@example.com"}},
			want: SyncRecord{ExternalUserID: "u2", Name: "bob", Email: "bob@example.com"},
		},
		{
			name: "nothing",
			id:   domainauth.Identity{UserID: "u3"},
			want: SyncRecord{ExternalUserID: "u3", Name: "User", Email: ""},
		},
		{
			name: "first email of several",
			id:   domainauth.Identity{UserID: "u4", Emails: []string{"one@x.com", "two@x.com"}},
			want: SyncRecord{ExternalUserID: "u4", Name: "one", Email: "one@x.com"},
		},
		{
			name: "email without local part",
			id:   domainauth.Identity{UserID: "u5", Emails: []string{"@x.com"}},
			want: SyncRecord{ExternalUserID: "u5", Name: "User", Email: "@x.com"},
		},
		{
			name: "last name only is ignored",
			id:   domainauth.Identity{UserID: "u6", LastName: "Lovelace", Emails: []string{"ada@x.com"}},
			want: SyncRecord{ExternalUserID: "u6", Name: "ada", Email: "ada@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSyncRecord(tt.id))
		})
	}
}
