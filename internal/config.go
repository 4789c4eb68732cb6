package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration loaded from file, environment and flags.
type Config struct {
	// APIURL is the backend base, every endpoint is appended to it.
	APIURL string `mapstructure:"api_url"`
	// StateDir overrides where the token database and config live.
	StateDir string `mapstructure:"state_dir"`
	// TokenKey is the fixed local-storage key holding the bearer token.
	TokenKey string `mapstructure:"token_key"`
	// Timeout bounds each HTTP request (e.g. "30s").
	Timeout time.Duration `mapstructure:"timeout"`

	Workspaces      []string            `mapstructure:"workspaces"`
	GitRepositories []string            `mapstructure:"git_repositories"`
	ProblemSources  []string            `mapstructure:"problem_sources"`
	Modules         []string            `mapstructure:"modules"`
	SubModules      map[string][]string `mapstructure:"submodules"`
	Statuses        []string            `mapstructure:"statuses"`
	Roles           []string            `mapstructure:"roles"`
}

// DefaultAPIURL is the backend the original deployment talks to.
const DefaultAPIURL = "http://localhost:8080/api"

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("state_dir", "")
	v.SetDefault("token_key", "jtrac.token")
	v.SetDefault("timeout", "30s")
	v.SetDefault("workspaces", []string{"IM", "DELL", "PL"})
	v.SetDefault("git_repositories", []string{
		"All-GIT",
		"IM-frontend-app",
		"DELL-backend-services",
		"PL-mobile-client",
	})
	v.SetDefault("problem_sources", []string{"IM", "CR"})
	v.SetDefault("modules", []string{"Policy", "Claim"})
	v.SetDefault("submodules", map[string][]string{
		"Policy": {"OAuth", "JWT", "Session Management", "Password Reset"},
		"Claim":  {"User Profiles", "Permissions", "Roles", "Account Settings"},
	})
	v.SetDefault("statuses", []string{"Open", "In Progress", "Under Review", "Resolved", "Closed", "Rejected"})
	v.SetDefault("roles", []string{"Developer", "Tester", "Lead", "Manager"})
}

// NewConfigViper returns a viper instance with defaults and JTRAC_* env binding.
// Callers may bind flags to it before LoadConfig.
func NewConfigViper() *viper.Viper {
	v := viper.New()
	setConfigDefaults(v)
	v.SetEnvPrefix("JTRAC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configFile (or config.yaml in the state directory if it
// exists) into v and validates the result. A missing default file is ignored.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	} else {
		paths, err := DetectStatePaths(v.GetString("state_dir"))
		if err == nil {
			if _, statErr := os.Stat(paths.ConfigPath()); statErr == nil {
				v.SetConfigFile(paths.ConfigPath())
				if err := v.ReadInConfig(); err != nil {
					return nil, fmt.Errorf("config: read %s: %w", paths.ConfigPath(), err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &cfg, nil
}

// Validate checks the fields the client cannot run without
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url must be set")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api_url %q is not an absolute URL", c.APIURL)
	}
	if c.TokenKey == "" {
		return errors.New("config: token_key must be set")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	return nil
}

// RequestTimeout returns Timeout, or 30s if unset.
func (c *Config) RequestTimeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// SubModulesFor returns the sub-modules offered for an impacted area
func (c *Config) SubModulesFor(module string) []string {
	if c == nil {
		return nil
	}
	for k, v := range c.SubModules {
		// viper lower-cases map keys
		if strings.EqualFold(k, module) {
			return v
		}
	}
	return nil
}
