package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load("", false)

	if !strings.HasSuffix(cfg.Home, DefaultDirName) {
		t.Fatalf("Home = %q, want suffix %q", cfg.Home, DefaultDirName)
	}
	if cfg.LockTimeout != 2*time.Second {
		t.Fatalf("LockTimeout = %v", cfg.LockTimeout)
	}
	if cfg.Verbose {
		t.Fatal("Verbose default should be false")
	}
}

func TestLoad_FlagOverridesEverything(t *testing.T) {
	t.Setenv("VAULTX_HOME", filepath.Join(t.TempDir(), "env-home"))

	flagHome := filepath.Join(t.TempDir(), "flag-home")
	cfg := Load(flagHome, true)

	if cfg.Home != flagHome {
		t.Fatalf("Home = %q, want %q", cfg.Home, flagHome)
	}
	if !cfg.Verbose {
		t.Fatal("Verbose flag ignored")
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	envHome := filepath.Join(t.TempDir(), "env-home")
	t.Setenv("VAULTX_HOME", envHome)

	cfg := Load("", false)
	if cfg.Home != envHome {
		t.Fatalf("Home = %q, want %q", cfg.Home, envHome)
	}
}
