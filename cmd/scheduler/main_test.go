package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_StartupFailures(t *testing.T) {
	t.Run("Unknown Flag", func(t *testing.T) {
		assert.Equal(t, 1, run([]string{"-recompute-later"}))
	})

	t.Run("Missing Database URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		assert.Equal(t, 1, run([]string{"-recompute-now"}))
	})

	t.Run("Invalid Recompute Schedule", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("RECOMPUTE_CRON", "whenever")
		assert.Equal(t, 1, run(nil))
	})
}
