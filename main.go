package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dungeon-legends-server/ai"
	"dungeon-legends-server/api"
	"dungeon-legends-server/config"
	"dungeon-legends-server/game"
	"dungeon-legends-server/loghandler"
	"dungeon-legends-server/storage"
	"dungeon-legends-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables. For local dev, set AUTH_BASE_URL and WS_PORT.")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	cfg := config.Load()

	if cfg.AuthBaseURL == "" {
		slog.Warn("AUTH_BASE_URL is not set, connections will fail authentication", "tag", "main")
	} else {
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL)
	}
	slog.Info("configuration loaded", "tag", "main",
		"deck_size", cfg.DeckSize, "starting_hand", cfg.StartingHandSize,
		"turn_limit_sec", cfg.TurnLimitSec, "ws_port", cfg.WSPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connecting to storage: %v", err)
	}
	if store == nil {
		slog.Info("DATABASE_URL not set, running without persistence", "tag", "main")
	}
	defer store.Close()

	decider := ai.New(cfg)

	hub := ws.NewHub(cfg)

	var matchStore game.MatchStore
	if store != nil {
		matchStore = store
	}
	registry := game.NewRegistry(cfg, hub, decider, matchStore)
	hub.Registry = registry

	go hub.Run(ctx)

	handler := api.NewHandler(cfg, registry, storeOrNil(store))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/game/create", handler.CreateGame)
	mux.HandleFunc("/api/game/state", handler.GameState)
	mux.HandleFunc("/api/game/save", handler.SaveGame)
	mux.HandleFunc("/api/game/load", handler.LoadGame)
	mux.HandleFunc("/api/game/results", handler.Results)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down", "tag", "main")
		registry.StopAll()
		server.Shutdown(context.Background())
	}()

	slog.Info("server listening", "tag", "main", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func storeOrNil(s *storage.Store) storage.MatchStore {
	if s == nil {
		return nil
	}
	return s
}
