package campaign

import "time"

// Settings are the engine tunables. Zero fields are replaced by defaults in
// SanitizeSettings.
type Settings struct {
	// ProgressWaitTimeout bounds how long a drain waits for fresh progress
	// before it gives up and keeps its queue for a later attempt.
	ProgressWaitTimeout time.Duration
	// FTUESpinThreshold is the lifetime spin count below which the robust
	// campaign treats the player as first-time.
	FTUESpinThreshold int64
	// DefaultLobby is the lobby generic lobby campaigns validate against
	// when their payload names none. Empty means any lobby.
	DefaultLobby string
}

// DefaultSettings returns the tunables used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ProgressWaitTimeout: 30 * time.Second,
		FTUESpinThreshold:   50,
	}
}

// SanitizeSettings clamps invalid values back to defaults.
func SanitizeSettings(s Settings) Settings {
	def := DefaultSettings()
	if s.ProgressWaitTimeout <= 0 {
		s.ProgressWaitTimeout = def.ProgressWaitTimeout
	}
	if s.FTUESpinThreshold <= 0 {
		s.FTUESpinThreshold = def.FTUESpinThreshold
	}
	return s
}
