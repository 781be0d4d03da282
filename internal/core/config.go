package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultChaosBinary    = "chaos"
)

// Config is the optional on-disk configuration. API keys are keyed by the
// environment variable they stand in for (case-insensitive).
type Config struct {
	APIKeys        map[string]string `json:"api_keys" yaml:"api_keys"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	Concurrency    int               `json:"concurrency" yaml:"concurrency"`
	ChaosBinary    string            `json:"chaos_binary" yaml:"chaos_binary"`
}

// RequestTimeout returns the per-request timeout, falling back to 30s.
func (c *Config) RequestTimeout() time.Duration {
	if c == nil || c.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Chaos returns the chaos binary name or path to probe for.
func (c *Config) Chaos() string {
	if c == nil || c.ChaosBinary == "" {
		return DefaultChaosBinary
	}
	return c.ChaosBinary
}

// LoadConfig reads a YAML (.yaml/.yml) or JSON config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.NewDecoder(f).Decode(&cfg)
	} else {
		err = json.NewDecoder(f).Decode(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfigIfExists behaves like LoadConfig but returns an empty config
// when path does not exist.
func LoadConfigIfExists(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	return cfg, err
}

// DefaultConfigPath returns ~/.rustrecon/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".rustrecon", "config.yaml")
}

const defaultConfigContent = `# rustrecon configuration
#
# API keys are read from the environment first; values here are only used
# when the matching environment variable is unset. Leave a key empty to skip
# that provider.
api_keys:
  SHODAN_API: ""
  CENSYS_ID: ""
  CENSYS_SECRET: ""
  CISCO_INVESTIGATE_API: ""
  CRIMINALIP_API: ""
  FULLHUNT_API: ""
  HUNTERIO_API: ""
  NETLAS_API: ""
  ZOOMEYE_API: ""
  PROJECTDISCOVERY_API: ""
  VT_API: ""

# Per-request timeout in seconds.
timeout_seconds: 30

# Providers queried in parallel per target. Output order is unaffected.
concurrency: 1

# Name or path of the ProjectDiscovery chaos client, used instead of the
# REST API when it is installed.
chaos_binary: "chaos"
`

// WriteDefaultConfig writes a commented default config to path. It refuses
// to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Credentials holds resolved API keys keyed by environment variable name.
// It is built once per run and passed to every provider call.
type Credentials map[string]string

// Lookup returns the non-empty value for name.
func (c Credentials) Lookup(name string) (string, bool) {
	v, ok := c[name]
	return v, ok && v != ""
}

// Missing lists which of names have no value.
func (c Credentials) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := c.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Require returns the values for the provider's credential variables in order,
// or a MissingCredential error naming the unset ones.
func (c Credentials) Require(spec ProviderSpec, targetValue string) ([]string, error) {
	if missing := c.Missing(spec.CredentialEnvVars...); len(missing) > 0 {
		return nil, NewQueryError(MissingCredential, spec.Name, targetValue,
			fmt.Errorf("%s not set", strings.Join(missing, ", ")))
	}
	values := make([]string, len(spec.CredentialEnvVars))
	for i, name := range spec.CredentialEnvVars {
		values[i], _ = c.Lookup(name)
	}
	return values, nil
}

// ResolveCredentials collects names from the environment, then from cfg.
func ResolveCredentials(cfg *Config, names []string, lookupEnv func(string) (string, bool)) Credentials {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	fileKeys := make(map[string]string)
	if cfg != nil {
		for k, v := range cfg.APIKeys {
			fileKeys[strings.ToUpper(k)] = strings.TrimSpace(v)
		}
	}

	creds := make(Credentials, len(names))
	for _, name := range names {
		if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			creds[name] = strings.TrimSpace(v)
			continue
		}
		if v := fileKeys[strings.ToUpper(name)]; v != "" {
			creds[name] = v
		}
	}
	return creds
}
