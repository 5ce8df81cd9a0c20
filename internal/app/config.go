package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FlockPath string // .hcl files declaring the initial flock

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlockPath == "" {
		return nil, errors.New("FlockPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
