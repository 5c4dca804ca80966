package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"SpinChallenges/internal/campaign"
)

type campaignConfig struct {
	ProgressWaitSeconds *float64 `json:"progressWaitSeconds"`
	FTUESpinThreshold   *int64   `json:"ftueSpinThreshold"`
	DefaultLobby        *string  `json:"defaultLobby"`
}

type tuningConfig struct {
	Campaign *campaignConfig `json:"campaign"`
}

// SettingsOverrides represents optional command-line overrides for engine
// tunables.
type SettingsOverrides struct {
	ProgressWait      *time.Duration
	FTUESpinThreshold *int64
	DefaultLobby      *string
}

func (o SettingsOverrides) apply(base campaign.Settings) campaign.Settings {
	if o.ProgressWait != nil {
		base.ProgressWaitTimeout = *o.ProgressWait
	}
	if o.FTUESpinThreshold != nil {
		base.FTUESpinThreshold = *o.FTUESpinThreshold
	}
	if o.DefaultLobby != nil {
		base.DefaultLobby = *o.DefaultLobby
	}
	return campaign.SanitizeSettings(base)
}

func mergeCampaignConfig(base campaign.Settings, cfg *campaignConfig) campaign.Settings {
	if cfg == nil {
		return base
	}
	if cfg.ProgressWaitSeconds != nil {
		base.ProgressWaitTimeout = time.Duration(*cfg.ProgressWaitSeconds * float64(time.Second))
	}
	if cfg.FTUESpinThreshold != nil {
		base.FTUESpinThreshold = *cfg.FTUESpinThreshold
	}
	if cfg.DefaultLobby != nil {
		base.DefaultLobby = *cfg.DefaultLobby
	}
	return campaign.SanitizeSettings(base)
}

func loadSettingsFromFile(path string, base campaign.Settings) (campaign.Settings, error) {
	if path == "" {
		return campaign.SanitizeSettings(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return campaign.SanitizeSettings(base), nil
		}
		return campaign.SanitizeSettings(base), fmt.Errorf("read tuning config %q: %w", cleanPath, err)
	}
	var cfg tuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return campaign.SanitizeSettings(base), fmt.Errorf("parse tuning config %q: %w", cleanPath, err)
	}
	return mergeCampaignConfig(base, cfg.Campaign), nil
}

// envConfig is the environment layer. Unset variables keep the values
// already in AppConfig.
type envConfig struct {
	Addr        *string  `env:"SPIN_ADDR"`
	DBPath      *string  `env:"SPIN_DB_PATH"`
	CatalogPath *string  `env:"SPIN_CATALOG"`
	TuningPath  *string  `env:"SPIN_TUNING"`
	TickHz      *float64 `env:"SPIN_TICK_HZ"`
}

// LoadEnv applies SPIN_* environment variables on top of cfg.
func LoadEnv(cfg *AppConfig) error {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if raw.Addr != nil {
		cfg.Addr = *raw.Addr
	}
	if raw.DBPath != nil {
		cfg.DBPath = *raw.DBPath
	}
	if raw.CatalogPath != nil {
		cfg.CatalogPath = *raw.CatalogPath
	}
	if raw.TuningPath != nil {
		cfg.TuningPath = *raw.TuningPath
	}
	if raw.TickHz != nil {
		cfg.TickHz = *raw.TickHz
	}
	return nil
}
