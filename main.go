package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SpinChallenges/internal/server"
)

func main() {
	def := server.DefaultAppConfig()
	addr := flag.String("addr", def.Addr, "address to listen on (e.g., 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "path to the sqlite database (\":memory:\" for a throwaway one)")
	catalogPath := flag.String("catalog", def.CatalogPath, "path to the game catalog seed JSON")
	tuningPath := flag.String("tuning", def.TuningPath, "path to campaign tuning JSON")
	tickHz := flag.Float64("tick-hz", def.TickHz, "engine loop tick rate")
	progressWait := flag.Float64("progress-wait", math.NaN(), "override seconds a completion drain waits for fresh progress")
	ftueSpins := flag.Int64("ftue-spins", -1, "override lifetime spin count below which a player is first-time")
	defaultLobby := flag.String("default-lobby", "", "override lobby generic campaigns validate against")
	flag.Parse()

	cfg := def
	if err := server.LoadEnv(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	// Flags set explicitly on the command line win over the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "db":
			cfg.DBPath = *dbPath
		case "catalog":
			cfg.CatalogPath = *catalogPath
		case "tuning":
			cfg.TuningPath = *tuningPath
		case "tick-hz":
			cfg.TickHz = *tickHz
		}
	})

	var overrides server.SettingsOverrides

	if !math.IsNaN(*progressWait) {
		val := time.Duration(*progressWait * float64(time.Second))
		overrides.ProgressWait = &val
	}
	if *ftueSpins >= 0 {
		val := *ftueSpins
		overrides.FTUESpinThreshold = &val
	}
	if *defaultLobby != "" {
		val := *defaultLobby
		overrides.DefaultLobby = &val
	}

	cfg.Overrides = overrides

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.StartApp(ctx, cfg); err != nil {
		log.Fatalf("server: %v", err)
	}
}
