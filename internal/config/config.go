package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Planner   PlannerConfig   `yaml:"planner"`
	Admin     AdminConfig     `yaml:"admin"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig guards the admin API surface.
type AuthConfig struct {
	AdminAPIKey string `yaml:"admin_api_key"`
}

// PlannerConfig points at the hosted plan-generation endpoint.
type PlannerConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// AdminConfig points at the hosted user-management endpoint.
type AdminConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// TailscaleConfig enables serving over a tailnet instead of plain TCP.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix FORTIVUS_ and underscore-separated paths:
//
//	FORTIVUS_SERVER_HOST, FORTIVUS_SERVER_PORT,
//	FORTIVUS_DB_HOST, FORTIVUS_DB_PORT, FORTIVUS_DB_NAME,
//	FORTIVUS_DB_USER, FORTIVUS_DB_PASSWORD, FORTIVUS_DB_SSLMODE,
//	FORTIVUS_AUTH_ADMIN_API_KEY,
//	FORTIVUS_PLANNER_BASE_URL, FORTIVUS_PLANNER_API_KEY, FORTIVUS_PLANNER_MODEL,
//	FORTIVUS_ADMIN_BASE_URL, FORTIVUS_ADMIN_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FORTIVUS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FORTIVUS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FORTIVUS_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FORTIVUS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FORTIVUS_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FORTIVUS_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FORTIVUS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FORTIVUS_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("FORTIVUS_AUTH_ADMIN_API_KEY"); v != "" {
		cfg.Auth.AdminAPIKey = v
	}
	if v := os.Getenv("FORTIVUS_PLANNER_BASE_URL"); v != "" {
		cfg.Planner.BaseURL = v
	}
	if v := os.Getenv("FORTIVUS_PLANNER_API_KEY"); v != "" {
		cfg.Planner.APIKey = v
	}
	if v := os.Getenv("FORTIVUS_PLANNER_MODEL"); v != "" {
		cfg.Planner.Model = v
	}
	if v := os.Getenv("FORTIVUS_ADMIN_BASE_URL"); v != "" {
		cfg.Admin.BaseURL = v
	}
	if v := os.Getenv("FORTIVUS_ADMIN_API_KEY"); v != "" {
		cfg.Admin.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.AdminAPIKey == "" {
		return fmt.Errorf("auth.admin_api_key is required")
	}
	if c.Planner.BaseURL == "" {
		return fmt.Errorf("planner.base_url is required")
	}
	if c.Admin.BaseURL == "" {
		return fmt.Errorf("admin.base_url is required")
	}
	return nil
}
