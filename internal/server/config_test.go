package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpinChallenges/internal/campaign"
)

func TestLoadSettingsMissingFileUsesBase(t *testing.T) {
	got, err := loadSettingsFromFile(filepath.Join(t.TempDir(), "missing.json"), campaign.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, campaign.DefaultSettings(), got)
}

func TestLoadSettingsMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"campaign":{"progressWaitSeconds":2.5,"defaultLobby":"main"}}`), 0o600))

	got, err := loadSettingsFromFile(path, campaign.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, got.ProgressWaitTimeout)
	assert.Equal(t, "main", got.DefaultLobby)
	assert.Equal(t, campaign.DefaultSettings().FTUESpinThreshold, got.FTUESpinThreshold)
}

func TestLoadSettingsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"campaign":`), 0o600))
	got, err := loadSettingsFromFile(path, campaign.DefaultSettings())
	assert.Error(t, err)
	assert.Equal(t, campaign.DefaultSettings(), got)
}

func TestOverridesWinAndSanitize(t *testing.T) {
	wait := 3 * time.Second
	negative := int64(-4)
	lobby := "vip"
	got := SettingsOverrides{ProgressWait: &wait, FTUESpinThreshold: &negative, DefaultLobby: &lobby}.
		apply(campaign.DefaultSettings())
	assert.Equal(t, wait, got.ProgressWaitTimeout)
	assert.Equal(t, campaign.DefaultSettings().FTUESpinThreshold, got.FTUESpinThreshold)
	assert.Equal(t, "vip", got.DefaultLobby)
}

func TestResolveSettingsLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"campaign":{"ftueSpinThreshold":10,"defaultLobby":"main"}}`), 0o600))
	lobby := "vip"
	cfg := DefaultAppConfig()
	cfg.TuningPath = path
	cfg.Overrides.DefaultLobby = &lobby

	got := resolveSettings(cfg)
	assert.Equal(t, int64(10), got.FTUESpinThreshold)
	assert.Equal(t, "vip", got.DefaultLobby)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SPIN_ADDR", "127.0.0.1:9000")
	t.Setenv("SPIN_TICK_HZ", "30")
	cfg := DefaultAppConfig()
	require.NoError(t, LoadEnv(&cfg))
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 30.0, cfg.TickHz)
	assert.Equal(t, DefaultAppConfig().DBPath, cfg.DBPath)
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("SPIN_TICK_HZ", "fast")
	cfg := DefaultAppConfig()
	err := LoadEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
