package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"SpinChallenges/internal/campaign"
	"SpinChallenges/internal/store"
)

const loopTimeout = 5 * time.Second

// Routes returns the websocket endpoints and the inspection API.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws/feed", a.serveFeed)
	r.Get("/ws/ui", a.serveUI)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/health", a.handleHealth)
		r.Get("/catalog", a.handleCatalog)
		r.Post("/catalog/symbols", a.handleSetSymbol)
		r.Get("/campaigns", a.handleListCampaigns)
		r.Post("/campaigns/invalidate", a.handleInvalidate)
		r.Get("/campaigns/{id}", a.handleGetCampaign)
		r.Post("/campaigns/{id}/restart", a.handleRestart)
		r.Post("/campaigns/{id}/progress", a.handleRequestProgress)
		r.Get("/tasks/{key}", a.handleGetTask)
		r.Get("/breadcrumbs", a.handleBreadcrumbs)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorDTO{Error: msg})
}

// onLoop runs fn on the engine loop and waits for it.
func (a *App) onLoop(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, loopTimeout)
	defer cancel()
	return a.loop.Do(ctx, fn)
}

func (a *App) loopFailed(w http.ResponseWriter, err error) {
	log.Printf("api: loop: %v", err)
	writeError(w, http.StatusServiceUnavailable, "engine unavailable")
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthDTO{
		Status:    "ok",
		Uptime:    time.Since(a.started).Round(time.Second).String(),
		Frame:     a.loop.Frame(),
		Feeds:     a.feed.len(),
		UIClients: a.ui.len(),
	}
	if err := a.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
	}
	if err := a.onLoop(r.Context(), func() { resp.Campaigns = len(a.director.Campaigns()) }); err != nil {
		resp.Status = "degraded"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (a *App) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogDTO{
		Games:              a.catalog.Games(),
		Lobbies:            a.catalog.Lobbies(),
		CollectionsEnabled: a.catalog.CollectionsEnabled(),
	})
}

// handleSetSymbol stores a symbol display name and lets campaigns retry
// deferred names. An empty game names the symbol for every game.
func (a *App) handleSetSymbol(w http.ResponseWriter, r *http.Request) {
	var req symbolDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Symbol == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "symbol and name are required")
		return
	}
	sym := store.Symbol{GameKey: req.Game, Symbol: req.Symbol, Name: req.Name}
	if err := a.store.UpsertSymbol(r.Context(), sym); err != nil {
		log.Printf("api: save symbol: %v", err)
		writeError(w, http.StatusInternalServerError, "symbol not saved")
		return
	}
	a.catalog.SetSymbol(req.Game, req.Symbol, req.Name)
	if err := a.onLoop(r.Context(), a.director.RefreshSymbols); err != nil {
		a.loopFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	var resp campaignListDTO
	err := a.onLoop(r.Context(), func() {
		resp.Populated = a.director.Populated()
		for _, c := range a.director.Campaigns() {
			resp.Campaigns = append(resp.Campaigns, c.Summary())
		}
	})
	if err != nil {
		a.loopFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// campaignByID is Find without the miss warning. Loop only.
func (a *App) campaignByID(id string) campaign.Campaign {
	for _, c := range a.director.Campaigns() {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

func (a *App) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		summary campaign.Summary
		found   bool
	)
	err := a.onLoop(r.Context(), func() {
		if c := a.campaignByID(id); c != nil {
			summary, found = c.Summary(), true
		}
	})
	if err != nil {
		a.loopFailed(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, campaign.ErrUnknownCampaign.Error()+": "+id)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *App) handleRestart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		resp       restartDTO
		restartErr error
	)
	err := a.onLoop(r.Context(), func() {
		c := a.campaignByID(id)
		if c == nil {
			restartErr = campaign.ErrUnknownCampaign
			return
		}
		restartErr = c.Restart()
		s := c.Summary()
		resp = restartDTO{ID: s.ID, State: s.State, ReplayCount: s.ReplayCount}
	})
	if err != nil {
		a.loopFailed(w, err)
		return
	}
	switch {
	case errors.Is(restartErr, campaign.ErrUnknownCampaign):
		writeError(w, http.StatusNotFound, restartErr.Error())
	case errors.Is(restartErr, campaign.ErrRestartNotAllowed):
		writeError(w, http.StatusConflict, restartErr.Error())
	case restartErr != nil:
		writeError(w, http.StatusInternalServerError, restartErr.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (a *App) handleRequestProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found := false
	err := a.onLoop(r.Context(), func() {
		if a.campaignByID(id) != nil {
			found = true
			a.director.GetProgress(id, nil)
		}
	})
	if err != nil {
		a.loopFailed(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, campaign.ErrUnknownCampaign.Error()+": "+id)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *App) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := a.onLoop(r.Context(), a.director.InvalidateCachedProgress); err != nil {
		a.loopFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleGetTask(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var (
		dto   taskDTO
		found bool
	)
	err := a.onLoop(r.Context(), func() {
		if t := a.director.GetTask(key); t != nil {
			dto, found = taskToDTO(t), true
		}
	})
	if err != nil {
		a.loopFailed(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "task not found: "+key)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (a *App) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	crumbs, err := a.store.ListBreadcrumbs(r.Context(), r.URL.Query().Get("campaign"), limit)
	if err != nil {
		log.Printf("api: breadcrumbs: %v", err)
		writeError(w, http.StatusInternalServerError, "breadcrumbs unavailable")
		return
	}
	writeJSON(w, http.StatusOK, breadcrumbListDTO{Breadcrumbs: crumbs})
}
