package testutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTestDBConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want TestDBConfig
	}{
		{
			name: "compose test profile defaults",
			env: map[string]string{
				"TEST_DB_HOST": "", "TEST_DB_PORT": "", "TEST_DB_USER": "",
				"TEST_DB_PASSWORD": "", "TEST_DB_NAME": "",
			},
			want: TestDBConfig{Host: "localhost", Port: "55432", User: "tickets", Password: "tickets", DBName: "tickets"},
		},
		{
			name: "ci overrides",
			env: map[string]string{
				"TEST_DB_HOST": "postgres", "TEST_DB_PORT": "5432", "TEST_DB_USER": "ci",
				"TEST_DB_PASSWORD": "secret", "TEST_DB_NAME": "tickets_ci",
			},
			want: TestDBConfig{Host: "postgres", Port: "5432", User: "ci", Password: "secret", DBName: "tickets_ci"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, DefaultTestDBConfig())
		})
	}
}

func TestTestDBConfigDSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "localhost", Port: "55432", User: "tickets", Password: "p@ss/word", DBName: "tickets"}

	u, err := url.Parse(cfg.DSN("t_abc,public"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:55432", u.Host)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "t_abc,public", u.Query().Get("search_path"))

	assert.NotContains(t, cfg.DSN(""), "search_path")
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " y "} {
		t.Setenv("TICKETS_TEST_FLAG", v)
		assert.True(t, envBool("TICKETS_TEST_FLAG"), v)
	}
	for _, v := range []string{"", "0", "false", "no"} {
		t.Setenv("TICKETS_TEST_FLAG", v)
		assert.False(t, envBool("TICKETS_TEST_FLAG"), v)
	}
}

func TestGetTestMongoURI(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "")
	assert.Equal(t, "mongodb://localhost:57017", GetTestMongoURI())

	t.Setenv("TEST_MONGO_URI", "mongodb://mongo:27017")
	assert.Equal(t, "mongodb://mongo:27017", GetTestMongoURI())
}
