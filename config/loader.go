// Package config loads and validates the application configuration from
// config.yml and the provider credentials from the environment.
package config

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Credentials are read from the environment, not the config file.
type Credentials struct {
	ClientID string
	APIKey   string
}

// Load reads config.yml, validates it, and fills in defaults for omitted
// tunables.
func Load() (*AppConfig, error) {
	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a raw configuration document.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills zero-valued tunables with the operational defaults.
func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.API.MinIntervalMS == 0 {
		cfg.API.MinIntervalMS = 20 // provider allows 60 requests per second
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 15000
	}
	if cfg.Search.MaxTransfers == 0 {
		cfg.Search.MaxTransfers = 4
	}
	if cfg.Search.MaxStops == 0 {
		cfg.Search.MaxStops = 12
	}
	if cfg.Search.MaxDurationMinutes == 0 {
		cfg.Search.MaxDurationMinutes = 960
	}
	if cfg.Search.MaxLookaheadHours == 0 {
		cfg.Search.MaxLookaheadHours = 3
	}
	if cfg.Search.MaxTransferWaitMinutes == 0 {
		cfg.Search.MaxTransferWaitMinutes = 60
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 60
	}
	if cfg.Cache.StalenessHours == 0 {
		cfg.Cache.StalenessHours = 13
	}
	if cfg.Cache.WarmBehindHours == 0 {
		cfg.Cache.WarmBehindHours = 10
	}
	if cfg.Cache.WarmAheadHours == 0 {
		cfg.Cache.WarmAheadHours = 18
	}
}

// CredentialsFromEnv reads the DB API marketplace credentials.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		ClientID: os.Getenv("DB_CLIENT_ID"),
		APIKey:   os.Getenv("DB_API_KEY"),
	}
	if creds.ClientID == "" || creds.APIKey == "" {
		return Credentials{}, errors.New("DB_CLIENT_ID and DB_API_KEY must be set")
	}
	return creds, nil
}
