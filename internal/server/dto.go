package server

import (
	"time"

	"SpinChallenges/internal/campaign"
	"SpinChallenges/internal/store"
)

type errorDTO struct {
	Error string `json:"error"`
}

type healthDTO struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Frame     uint64 `json:"frame"`
	Campaigns int    `json:"campaigns"`
	Feeds     int    `json:"feeds"`
	UIClients int    `json:"ui_clients"`
}

type campaignListDTO struct {
	Populated bool               `json:"populated"`
	Campaigns []campaign.Summary `json:"campaigns"`
}

type restartDTO struct {
	ID          string         `json:"id"`
	State       campaign.State `json:"state"`
	ReplayCount int            `json:"replay_count"`
}

type taskDTO struct {
	Key      string     `json:"key"`
	Type     string     `json:"type,omitempty"`
	Progress int64      `json:"progress"`
	Target   int64      `json:"target"`
	Complete bool       `json:"complete"`
	Fired    bool       `json:"fired"`
	Expiry   *time.Time `json:"expiry,omitempty"`
}

func taskToDTO(t *campaign.FeatureTask) taskDTO {
	dto := taskDTO{
		Key:      t.Key,
		Type:     t.Type,
		Progress: t.Progress,
		Target:   t.Target,
		Complete: t.IsComplete(),
		Fired:    t.Fired(),
	}
	if !t.Expiry.IsZero() {
		exp := t.Expiry
		dto.Expiry = &exp
	}
	return dto
}

type breadcrumbListDTO struct {
	Breadcrumbs []store.Breadcrumb `json:"breadcrumbs"`
}

type catalogDTO struct {
	Games              []campaign.GameInfo `json:"games"`
	Lobbies            map[string][]string `json:"lobbies"`
	CollectionsEnabled bool                `json:"collections_enabled"`
}

type symbolDTO struct {
	Game   string `json:"game"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
