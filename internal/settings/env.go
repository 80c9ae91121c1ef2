// Package settings loads the run environment and the on-disk configuration
// files, and validates them before any session is scheduled.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"lineup-runner/internal/runstore"
)

const (
	DefaultAccountsFile  = "config/accounts.csv"
	DefaultSelectorsFile = "config/selectors.yaml"
	DefaultTeamFile      = "config/team.yaml"
	DefaultArtifactsDir  = "artifacts"
	DefaultConcurrency   = 3
)

type Env struct {
	BaseURL       string `env:"BASE_URL"`
	Headless      bool   `env:"HEADLESS" envDefault:"false"`
	MaxConcurrent int    `env:"MAX_CONCURRENT" envDefault:"3"`
	AccountsFile  string `env:"ACCOUNTS_FILE" envDefault:"config/accounts.csv"`
	SelectorsFile string `env:"SELECTORS_FILE" envDefault:"config/selectors.yaml"`
	TeamFile      string `env:"TEAM_FILE" envDefault:"config/team.yaml"`
	ArtifactsDir  string `env:"ARTIFACTS_DIR" envDefault:"artifacts"`
	OTelEndpoint  string `env:"LINEUP_OTEL_ENDPOINT"`
}

// LoadEnv reads dotenvPath into the process environment when it exists
// (without overriding variables already set) and parses Env from it.
func LoadEnv(dotenvPath string) (Env, error) {
	if p := strings.TrimSpace(dotenvPath); p != "" {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return Env{}, fmt.Errorf("load %s: %w", p, err)
			}
		}
	}

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConcurrency
	}
	return cfg, nil
}

func (e Env) Layout() runstore.Layout {
	dir := strings.TrimSpace(e.ArtifactsDir)
	if dir == "" {
		dir = DefaultArtifactsDir
	}
	return runstore.Layout{Root: dir}
}
