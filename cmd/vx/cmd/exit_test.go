package cmd

import (
	"fmt"
	"testing"

	"github.com/skdas20/VaultX/internal/ttl"
	"github.com/skdas20/VaultX/internal/vault"
)

func TestExitCode_Contract(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{vault.ErrProjectExists, 2},
		{vault.ErrAuthFailed, 3},
		{vault.ErrProjectMissing, 4},
		{ttl.ErrInvalidTTL, 5},
		{vault.ErrSecretMissing, 6},
		{vault.ErrExpired, 7},
		{vault.ErrIdentityExists, 8},
		{ErrSSH, 9},
		{vault.ErrVaultBusy, 1},
		{vault.ErrNotInitialized, 1},
		{fmt.Errorf("anything else"), 1},
	}

	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestExitCode_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("secret %q: %w", "TEMP", vault.ErrExpired)
	if got := ExitCode(wrapped); got != 7 {
		t.Fatalf("ExitCode(wrapped expired) = %d, want 7", got)
	}
}

func TestExitCode_PropagatesExternalStatus(t *testing.T) {
	err := fmt.Errorf("ssh: %w", &ExitStatusError{Code: 42})
	if got := ExitCode(err); got != 42 {
		t.Fatalf("ExitCode(external status) = %d, want 42", got)
	}
}
