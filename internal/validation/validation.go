// Package validation provides input validation for vault entry names.
package validation

import (
	"errors"
	"regexp"
)

// ErrInvalidName is returned when a name fails the entry name grammar.
var ErrInvalidName = errors.New("name may only contain letters, digits, '-', '_', and '.', and must be 1-64 characters")

// Project names, secret keys, SSH identity names, and SSH server names all
// share one grammar.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Name validates a project, secret key, identity, or server name.
func Name(name string) error {
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}
