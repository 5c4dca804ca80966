package campaign

import "github.com/tidwall/gjson"

// Well-known experiment keys.
const (
	KeyRobust   = "challenge_campaigns"
	KeyPartner  = "partner_powerup"
	KeyEue      = "eue_challenges"
	KeyRichPass = "rich_pass"
	KeySeasonal = "season_challenges"
)

// factory builds an uninitialised campaign of one kind.
type factory func(id string, env *Env, h hub) Campaign

func defaultFactories() map[string]factory {
	return map[string]factory{
		KeyRobust:   newRobustCampaign,
		KeyPartner:  newPartnerCampaign,
		KeyEue:      newEueCampaign,
		KeyRichPass: newRichPassCampaign,
		KeySeasonal: newSeasonalCampaign,
	}
}

// newLobbyCampaign is the fallback for unknown experiment keys.
func newLobbyCampaign(id string, env *Env, h hub) Campaign {
	return newChallengeCampaign(KindLobby, id, env, h)
}

func newPartnerCampaign(id string, env *Env, h hub) Campaign {
	return newChallengeCampaign(KindPartner, id, env, h)
}

// RichPassCampaign pays its mission rewards from a pass track.
type RichPassCampaign struct {
	*ChallengeCampaign
}

func newRichPassCampaign(id string, env *Env, h hub) Campaign {
	p := &RichPassCampaign{ChallengeCampaign: newChallengeCampaign(KindRichPass, id, env, h)}
	p.self = p
	return p
}

func (p *RichPassCampaign) parseMissions(data gjson.Result) []*Mission {
	return p.parseEvents(data, SourcePass)
}
