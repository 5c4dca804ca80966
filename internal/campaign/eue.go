package campaign

// EueCampaign is the onboarding campaign. Credits are granted immediately
// instead of being held as pending, and every completion is forwarded to the
// onboarding manager.
type EueCampaign struct {
	*ChallengeCampaign
}

func newEueCampaign(id string, env *Env, h hub) Campaign {
	e := &EueCampaign{ChallengeCampaign: newChallengeCampaign(KindEue, id, env, h)}
	e.self = e
	return e
}

func (e *EueCampaign) showCampaignComplete(batch []Completion) {
	e.State = StateComplete
	e.grant(e.collectAll())
	e.env.Presenter.ShowCampaignComplete(e.id, batch)
	e.forward(batch)
}

func (e *EueCampaign) showMissionComplete(batch []Completion) {
	for _, comp := range batch {
		e.grant(e.collectMission(comp))
		e.env.Presenter.ShowMissionComplete(e.id, comp.EventIndex, []Completion{comp})
	}
	e.forward(batch)
}

func (e *EueCampaign) showTypeComplete(batch []Completion) {
	for _, comp := range batch {
		e.grant(e.collectTypes(comp))
		e.env.Presenter.ShowTypeComplete(e.id, comp.EventIndex, []Completion{comp})
	}
	e.forward(batch)
}

func (e *EueCampaign) grant(paid []*Reward) {
	if total := sumCredits(paid); total.IsPositive() {
		e.env.Presenter.GrantCredits(e.id, total.IntPart())
	}
}

func (e *EueCampaign) forward(batch []Completion) {
	for _, comp := range batch {
		e.env.Onboarding.OnChallengeComplete(e.id, comp)
	}
}
