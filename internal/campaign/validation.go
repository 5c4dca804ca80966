package campaign

import "fmt"

// IsLobbyValid checks every objective game against the catalog. The verdict
// is memoized until ResetValidation, except that a campaign without missions
// is reported invalid without caching.
func (c *ChallengeCampaign) IsLobbyValid() bool {
	if len(c.Missions) == 0 {
		c.ErrorString = fmt.Sprintf("%s: no missions", ErrMissingData)
		return false
	}
	switch c.lobbyValid {
	case Valid:
		return true
	case Invalid:
		return false
	}
	if err := c.validateLobby(); err != nil {
		c.ErrorString = err.Error()
		c.lobbyValid = Invalid
		c.env.warnf("campaign %s: lobby invalid: %v", c.id, err)
		return false
	}
	c.lobbyValid = Valid
	return true
}

func (c *ChallengeCampaign) validateLobby() error {
	cat := c.env.Catalog
	for i, m := range c.Missions {
		if m == nil || len(m.Objectives) == 0 {
			return fmt.Errorf("%w: mission %d has no objectives", ErrMissingData, i)
		}
		for _, o := range m.Objectives {
			if o.NeedsCollections() && !cat.CollectionsEnabled() {
				return fmt.Errorf("%w: mission %d objective %d is %s", ErrCollectionsDisabled, i, o.Index, o.Type)
			}
			for _, g := range o.Games {
				info, ok := cat.Game(g)
				if !ok || !info.Licensed {
					return fmt.Errorf("%w: %s", ErrGameUnavailable, g)
				}
				if c.Lobby != "" {
					if !cat.LobbyHasGame(c.Lobby, g) {
						return fmt.Errorf("%w: %s not in %s", ErrGameNotInLobby, g, c.Lobby)
					}
				} else if !cat.AnyLobbyHasGame(g) {
					return fmt.Errorf("%w: %s", ErrGameNotInLobby, g)
				}
			}
		}
	}
	return nil
}

// IsCampaignValid runs the variant's own validity check once.
func (c *ChallengeCampaign) IsCampaignValid() bool {
	switch c.campaignValid {
	case Valid:
		return true
	case Invalid:
		return false
	}
	if c.self.checkCampaignValid() {
		c.campaignValid = Valid
		return true
	}
	c.campaignValid = Invalid
	c.ErrorString = fmt.Sprintf("%s: %s content check failed (variant %q, %d missions)",
		ErrMissingData, c.kind, c.Variant, len(c.Missions))
	return false
}

// ResetValidation forgets both memoized verdicts.
func (c *ChallengeCampaign) ResetValidation() {
	c.lobbyValid = NotValidated
	c.campaignValid = NotValidated
	c.ErrorString = ""
}
