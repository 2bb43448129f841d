package main

import (
	"testing"

	_ "github.com/medistock/medistock/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	main()
}
