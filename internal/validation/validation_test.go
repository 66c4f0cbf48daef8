package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestName_Accepted(t *testing.T) {
	for _, name := range []string{
		"alpha", "my-project", "my_project", "v1.2.3", "A", "0",
		"DB_PASSWORD", "api.key-2", strings.Repeat("a", 64),
	} {
		if err := Name(name); err != nil {
			t.Fatalf("Name(%q): unexpected error %v", name, err)
		}
	}
}

func TestName_Rejected(t *testing.T) {
	for _, name := range []string{
		"", " ", "has space", "slash/name", "colon:name", "star*",
		"tab\tname", "newline\n", "ünïcode", strings.Repeat("a", 65),
	} {
		if err := Name(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("Name(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}
