// Package config resolves VaultX configuration from flags and the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultDirName is the vault directory under the user's home.
const DefaultDirName = ".vaultx"

// EnvPrefix namespaces VaultX environment variables, e.g. VAULTX_HOME.
const EnvPrefix = "VAULTX"

// Config holds the resolved settings for one invocation.
type Config struct {
	// Home is the vault directory holding vault.vx and its lockfile.
	Home string

	// LockTimeout bounds the wait for the advisory vault lock.
	LockTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool
}

// Load resolves configuration. Priority for the vault directory:
// --vault flag > VAULTX_HOME > ~/.vaultx.
func Load(flagHome string, flagVerbose bool) *Config {
	v := viper.New()
	v.SetDefault("home", defaultHome())
	v.SetDefault("lock_timeout", 2*time.Second)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Home:        v.GetString("home"),
		LockTimeout: v.GetDuration("lock_timeout"),
		Verbose:     v.GetBool("verbose") || flagVerbose,
	}
	if flagHome != "" {
		cfg.Home = flagHome
	}
	return cfg
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}
