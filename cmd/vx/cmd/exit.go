package cmd

import (
	"errors"
	"fmt"

	"github.com/skdas20/VaultX/internal/ttl"
	"github.com/skdas20/VaultX/internal/vault"
)

// ErrSSH covers failures invoking the external SSH client.
var ErrSSH = errors.New("SSH connection failed")

// ExitStatusError propagates an external process's exit status verbatim,
// as `vx ssh connect` does for the SSH client.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an error to the vx exit-code contract.
func ExitCode(err error) int {
	var status *ExitStatusError
	if errors.As(err, &status) {
		return status.Code
	}

	switch {
	case errors.Is(err, vault.ErrProjectExists):
		return 2
	case errors.Is(err, vault.ErrAuthFailed):
		return 3
	case errors.Is(err, vault.ErrProjectMissing):
		return 4
	case errors.Is(err, ttl.ErrInvalidTTL):
		return 5
	case errors.Is(err, vault.ErrSecretMissing):
		return 6
	case errors.Is(err, vault.ErrExpired):
		return 7
	case errors.Is(err, vault.ErrIdentityExists):
		return 8
	case errors.Is(err, ErrSSH):
		return 9
	default:
		return 1
	}
}
