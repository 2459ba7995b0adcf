package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings read from the environment.
// Command-line flags take precedence over these.
type Env struct {
	Assets       string `env:"RECWARS_ASSETS" envDefault:"http://localhost:8080/assets/"`
	TelemetryURL string `env:"RECWARS_TELEMETRY_URL"`
	CvarsFile    string `env:"RECWARS_CVARS"`
	LogPath      string `env:"RECWARS_LOG"`
	LogLevel     string `env:"RECWARS_LOG_LEVEL" envDefault:"info"`
	DBPath       string `env:"RECWARS_DB" envDefault:"~/.recwars/directory.db"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
