package config

import "github.com/caarlos0/env/v10"

// Config centralizes the client's environment configuration.
type Config struct {
	ChatAPIURL    string `env:"CHAT_API_URL" envDefault:"http://localhost:8000/chat"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	TranscriptDir string `env:"TRANSCRIPT_DIR" envDefault:"."`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
