package app

import (
	"os"
	"strconv"
)

// TestModeEnv makes the binaries return before dialling Redis, Postgres or
// the backend. Tests of main packages set it through internal/testing/guard.
const TestModeEnv = "MEDISTOCK_TEST_MODE"

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
