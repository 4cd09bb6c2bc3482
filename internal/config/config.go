package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application's configuration. Values come from a YAML file
// with environment-variable overrides; secrets have no defaults and must be
// set or the process refuses to start.
type Config struct {
	Env    string `yaml:"env" env:"APP_ENV" env-default:"local"`
	Server struct {
		Address      string        `yaml:"address" env:"SERVER_ADDRESS" env-default:":3000"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
		TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h"`
	} `yaml:"auth"`
	Database struct {
		URL       string `yaml:"url" env:"DATABASE_URL"`
		InMemory  bool   `yaml:"in_memory" env:"DATABASE_IN_MEMORY"`
		SeedUsers bool   `yaml:"seed_users" env:"DATABASE_SEED_USERS"`
	} `yaml:"database"`
	Proxmox struct {
		Host          string        `yaml:"host" env:"PROXMOX_HOST"`
		Port          int           `yaml:"port" env:"PROXMOX_PORT" env-default:"8006"`
		Node          string        `yaml:"node" env:"PROXMOX_NODE" env-default:"pve"`
		User          string        `yaml:"user" env:"PROXMOX_USER"`
		Password      string        `yaml:"password" env:"PROXMOX_PASSWORD"`
		Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
		SkipTLSVerify bool          `yaml:"skip_tls_verify" env:"PROXMOX_SKIP_TLS_VERIFY"`
		Mock          bool          `yaml:"mock" env:"PROXMOX_MOCK"`
	} `yaml:"proxmox"`
}

// MustLoad reads the config from path, applying environment overrides.
// Panics on any problem so misconfiguration is caught at startup.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load reads the config from path. If the file does not exist the config is
// built from environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	}

	if !cfg.Proxmox.Mock && cfg.Proxmox.Host == "" {
		return nil, fmt.Errorf("proxmox.host is required unless proxmox.mock is enabled")
	}
	if !cfg.Database.InMemory && cfg.Database.URL == "" {
		return nil, fmt.Errorf("database.url is required unless database.in_memory is enabled")
	}

	return &cfg, nil
}
