package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"SpinChallenges/internal/campaign"
	"SpinChallenges/internal/catalog"
	"SpinChallenges/internal/store"
	"SpinChallenges/internal/tick"
)

type AppConfig struct {
	Addr        string
	DBPath      string
	CatalogPath string
	TuningPath  string
	TickHz      float64
	Overrides   SettingsOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:        ":8080",
		DBPath:      "spin.db",
		CatalogPath: "configs/catalog.json",
		TuningPath:  "configs/tuning.json",
		TickHz:      tick.DefaultHz,
	}
}

func resolveSettings(cfg AppConfig) campaign.Settings {
	settings := campaign.DefaultSettings()
	loaded, err := loadSettingsFromFile(cfg.TuningPath, settings)
	if err != nil {
		log.Printf("tuning config: %v (using defaults)", err)
	} else {
		settings = loaded
	}
	return cfg.Overrides.apply(settings)
}

// App wires the campaign engine to its loop, storage and transports.
type App struct {
	cfg      AppConfig
	loop     *tick.Loop
	store    *store.Store
	catalog  *catalog.Catalog
	status   *GameStatus
	feed     *feedHub
	ui       *uiHub
	director *campaign.Director
	logger   *log.Logger
	started  time.Time
}

// NewApp opens the store, seeds and loads the catalog and builds the
// director. The loop is not started.
func NewApp(cfg AppConfig) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	seed, err := catalog.LoadSeedFile(cfg.CatalogPath)
	if err != nil {
		log.Printf("catalog seed: %v (skipping)", err)
	} else if err := catalog.Persist(ctx, st, seed); err != nil {
		st.Close()
		return nil, fmt.Errorf("persist catalog seed: %w", err)
	}
	cat, err := catalog.Load(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	for _, b := range seed.Bundles {
		cat.MarkBundleLoaded(b)
	}

	logger := log.New(os.Stdout, "[campaign] ", log.LstdFlags)
	loop := tick.New(cfg.TickHz)
	a := &App{
		cfg:     cfg,
		loop:    loop,
		store:   st,
		catalog: cat,
		feed:    newFeedHub(),
		logger:  logger,
		started: time.Now(),
	}
	a.ui = newUIHub()
	a.status = &GameStatus{ui: a.ui}
	a.director = campaign.NewDirector(campaign.Env{
		Scheduler:   loop,
		Catalog:     cat,
		Game:        a.status,
		Presenter:   a.ui,
		Transport:   a.feed,
		Breadcrumbs: store.BreadcrumbSink{Store: st, Logger: logger},
		Onboarding:  a.ui,
		Assets:      cat,
		Symbols:     cat,
		Logger:      logger,
		Settings:    resolveSettings(cfg),
	})
	return a, nil
}

func (a *App) Close() error { return a.store.Close() }

// Run drives the loop and serves HTTP on addr until ctx is cancelled.
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a.Routes(), ReadHeaderTimeout: 10 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loop.Run(ctx) })
	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.feed.closeAll()
		a.ui.closeAll()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func StartApp(ctx context.Context, cfg AppConfig) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	s := app.director.Settings()
	log.Printf("starting campaign server on %s (tick %.0f Hz, progress wait %s, ftue < %d spins, %d games)\n",
		cfg.Addr, cfg.TickHz, s.ProgressWaitTimeout, s.FTUESpinThreshold, len(app.catalog.Games()))
	return app.Run(ctx, cfg.Addr)
}
