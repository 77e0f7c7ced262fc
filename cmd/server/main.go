package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/sketchpad/sketchpad/backend-go/internal/auth"
	"github.com/sketchpad/sketchpad/backend-go/internal/config"
	"github.com/sketchpad/sketchpad/backend-go/internal/export"
	mw "github.com/sketchpad/sketchpad/backend-go/internal/middleware"
	"github.com/sketchpad/sketchpad/backend-go/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := session.NewManager(cfg.ViewportWidth, cfg.ViewportHeight, cfg.SessionTTL)
	go manager.Run(ctx)

	authService := auth.NewService(cfg.SessionSecret, cfg.SessionTTL)
	authHandler := auth.NewHandler(authService, manager)

	sessionHandler := session.NewHandler(manager, authService, cfg.OriginHosts())
	exportHandler := export.NewHandler(manager)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Sessions (public)
	r.HandleFunc("/sessions", authHandler.CreateSession).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api/sessions/{sessionId}").Subrouter()
	api.Use(authService.SessionMiddleware)

	api.HandleFunc("/frame", sessionHandler.Frame).Methods("GET", "OPTIONS")
	api.HandleFunc("/export.png", exportHandler.ExportPNG).Methods("GET", "OPTIONS")

	// WebSocket endpoint
	r.HandleFunc("/ws/sessions/{sessionId}", sessionHandler.ServeWS)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		// Closes the remaining websocket clients and sessions.
		cancel()
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
