// Package testutil connects integration tests to the local Postgres, Redis and
// MongoDB instances from the test compose profile. Tests skip when a backend is
// unreachable unless TEST_REQUIRE_<BACKEND> or TEST_REQUIRE_INFRA is set.
package testutil

import (
	"os"
	"slices"
	"strings"
)

// TestingTB is the part of testing.TB the harness needs.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return slices.Contains([]string{"1", "true", "yes", "y"}, strings.ToLower(strings.TrimSpace(os.Getenv(key))))
}

func required(backend string) bool {
	return envBool("TEST_REQUIRE_"+backend) || envBool("TEST_REQUIRE_INFRA")
}

func requireDB() bool    { return required("DB") }
func requireRedis() bool { return required("REDIS") }
func requireMongo() bool { return required("MONGO") }

// skipOrFail skips the test when backend is optional and fails it otherwise.
func skipOrFail(t TestingTB, required bool, args ...any) {
	t.Helper()
	if required {
		t.Fatal(args...)
	}
	t.Skip(args...)
}
