package campaign

import "errors"

var (
	ErrRestartNotAllowed   = errors.New("campaign cannot restart")
	ErrMissingData         = errors.New("missing campaign data")
	ErrGameUnavailable     = errors.New("game not in catalog or not licensed")
	ErrGameNotInLobby      = errors.New("game not in lobby")
	ErrCollectionsDisabled = errors.New("collections disabled")
	ErrUnknownCampaign     = errors.New("unknown campaign")
)
