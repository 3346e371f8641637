package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/inkoverlay/internal/auth"
	"github.com/inamate/inkoverlay/internal/config"
	"github.com/inamate/inkoverlay/internal/db"
	"github.com/inamate/inkoverlay/internal/db/dbgen"
	"github.com/inamate/inkoverlay/internal/discovery"
	"github.com/inamate/inkoverlay/internal/export"
	mw "github.com/inamate/inkoverlay/internal/middleware"
	"github.com/inamate/inkoverlay/internal/prefs"
	"github.com/inamate/inkoverlay/internal/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := dbgen.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService)

	reviewService := review.NewService(queries)
	hub := review.NewHub(reviewService.SaveStatus)
	go hub.Run()

	origins := mw.SplitOrigins(cfg.AllowedOrigins)
	reviewHandler := review.NewHandler(reviewService, hub, authService, originPatterns(origins))

	prefsHandler := prefs.NewHandler(prefs.NewPostgresRepository(queries), hub)
	exportHandler := export.NewHandler()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	compress := mw.Compress()

	// Preflight for every route; CORS answers before this runs
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Snapshot export (public)
	exp := r.PathPrefix("/export").Subrouter()
	exp.Use(compress)
	exp.HandleFunc("/png", exportHandler.ExportPNG).Methods("POST", "OPTIONS")

	// Overlay bundle: wasm, wasm_exec.js and the loader
	static := r.PathPrefix("/overlay/").Subrouter()
	static.Use(compress)
	static.PathPrefix("/").Handler(http.StripPrefix("/overlay/", http.FileServer(http.Dir(cfg.OverlayDir)))).Methods("GET", "HEAD")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.Use(compress)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/settings", prefsHandler.Get).Methods("GET")
	api.HandleFunc("/settings", prefsHandler.Put).Methods("PUT")
	api.HandleFunc("/sessions", reviewHandler.Create).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}", reviewHandler.Get).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/events", reviewHandler.PostEvent).Methods("POST")

	// WebSocket endpoint, authenticated by ?token=
	r.HandleFunc("/ws/review/{sessionId}", reviewHandler.ServeWS)

	if cfg.MDNSEnabled {
		mdnsServer, err := discovery.Advertise(cfg.MDNSInstance, cfg.Port)
		if err != nil {
			slog.Warn("mdns advertise", "error", err)
		} else {
			slog.Info("advertising on mdns", "service", discovery.ServiceType)
			defer mdnsServer.Shutdown()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so overlays are closed cleanly
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "overlay", cfg.OverlayDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// originPatterns turns allowed origins into host patterns for the
// websocket origin check.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
