package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	User       string
	Role       string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// Identity is the user the commands act as.
func (f *Flags) Identity() access.Identity {
	role := f.Role
	if role == "" {
		role = config.DefaultRole
	}
	return access.Identity{User: f.User, Role: role}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tally", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tally")
}

// DefaultUser returns the login name of the current user.
func DefaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
