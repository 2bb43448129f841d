// Package guard is imported for its side effect by tests of main packages:
// it sets MEDISTOCK_TEST_MODE before main's dependencies read it, so main
// returns instead of dialling Redis and the backend.
package guard

import "os"

func init() {
	if _, set := os.LookupEnv("MEDISTOCK_TEST_MODE"); !set {
		_ = os.Setenv("MEDISTOCK_TEST_MODE", "1")
	}
}
