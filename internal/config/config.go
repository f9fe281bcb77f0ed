// Package config provides role configuration for the devctl supervisor.
//
// This package defines the two supervised roles (frontend, backend) with
// their fixed ports and launch commands, and handles the optional
// .devctl.yaml override file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role identifies one of the two supervised dev-server processes.
type Role string

const (
	// RoleFrontend is the Vite development server.
	RoleFrontend Role = "frontend"

	// RoleBackend is the Express application server.
	RoleBackend Role = "backend"
)

// ParseRole validates a user-supplied role name.
//
// Parameters:
//   - s: The role name from the command line.
//
// Returns:
//   - Role: The parsed role.
//   - error: Non-nil if s is not "frontend" or "backend".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFrontend, RoleBackend:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q (use 'frontend' or 'backend')", s)
}

// RoleConfig holds the launch configuration for a single role.
type RoleConfig struct {
	// Role is the logical identity this config belongs to.
	Role Role `yaml:"-"`

	// Port is the TCP port the role binds when ready.
	Port int `yaml:"port,omitempty"`

	// Command is the launch command and its arguments.
	Command []string `yaml:"command,omitempty"`

	// Dir is the working directory for the command. Empty means the
	// current directory.
	Dir string `yaml:"dir,omitempty"`
}

// URL returns the local URL the role serves once it is up.
func (rc RoleConfig) URL() string {
	return fmt.Sprintf("http://localhost:%d", rc.Port)
}

// Config is the immutable role configuration passed into the Supervisor.
type Config struct {
	// Frontend is the frontend role configuration.
	Frontend RoleConfig `yaml:"frontend,omitempty"`

	// Backend is the backend role configuration.
	Backend RoleConfig `yaml:"backend,omitempty"`
}

// Default ports: Vite dev server and Express server defaults.
const (
	DefaultFrontendPort = 5173
	DefaultBackendPort  = 5000
)

// ConfigFileName is the optional per-project override file.
const ConfigFileName = ".devctl.yaml"

// Defaults returns the built-in role configuration.
func Defaults() Config {
	return Config{
		Frontend: RoleConfig{
			Role:    RoleFrontend,
			Port:    DefaultFrontendPort,
			Command: []string{"npm", "run", "dev"},
		},
		Backend: RoleConfig{
			Role:    RoleBackend,
			Port:    DefaultBackendPort,
			Command: []string{"npm", "run", "server"},
		},
	}
}

// Load returns the effective configuration: the defaults, with any fields
// set in .devctl.yaml (if present in the current directory) applied on top.
//
// Returns:
//   - Config: The effective configuration.
//   - error: Non-nil if the file exists but cannot be read or parsed.
func Load() (Config, error) {
	return LoadFile(ConfigFileName)
}

// LoadFile loads configuration from a specific path, merging over defaults.
// A missing file is not an error; the defaults are returned.
//
// Parameters:
//   - path: Path to a .devctl.yaml file.
//
// Returns:
//   - Config: The effective configuration.
//   - error: Non-nil for read or parse failures.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.Frontend = mergeRole(cfg.Frontend, override.Frontend)
	cfg.Backend = mergeRole(cfg.Backend, override.Backend)
	return cfg, nil
}

// mergeRole applies non-zero override fields on top of the base config.
func mergeRole(base, override RoleConfig) RoleConfig {
	if override.Port != 0 {
		base.Port = override.Port
	}
	if len(override.Command) > 0 {
		base.Command = override.Command
	}
	if override.Dir != "" {
		base.Dir = override.Dir
	}
	return base
}

// Role returns the configuration for the given role.
func (c Config) Role(r Role) RoleConfig {
	if r == RoleBackend {
		return c.Backend
	}
	return c.Frontend
}

// Other returns the configuration for the sibling of the given role.
func (c Config) Other(r Role) RoleConfig {
	if r == RoleBackend {
		return c.Frontend
	}
	return c.Backend
}

// Roles returns both role configurations, backend first. Backend-first
// matches the startup order: the frontend proxies API calls to the backend,
// so the backend is spawned first.
func (c Config) Roles() []RoleConfig {
	return []RoleConfig{c.Backend, c.Frontend}
}
