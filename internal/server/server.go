// Package server assembles the HTTP surface and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/event"
	"github.com/hearthbot/hearth/internal/formdef"
	"github.com/hearthbot/hearth/internal/handler"
	"github.com/hearthbot/hearth/internal/host/session"
	"github.com/hearthbot/hearth/internal/host/ws"
	"github.com/hearthbot/hearth/internal/insights"
	"github.com/hearthbot/hearth/internal/journal"
)

// Config holds server configuration and collaborators.
type Config struct {
	Port int

	Registry   *formdef.Registry
	Lookup     forms.Lookup
	Translator forms.Translator
	Store      journal.Store
	Bus        event.Publisher
	Collector  *insights.Collector
	Sessions   *session.Manager
	Secret     []byte
}

// Router builds the full route tree. Split out of Run so tests can mount
// it on httptest servers.
func Router(cfg Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	fh := handler.NewFormHandler(cfg.Registry)
	sh := handler.NewSubmissionHandler(cfg.Store)
	ih := handler.NewInsightsHandler(cfg.Collector)
	wsh := ws.NewHandler(ws.Options{
		Registry:   cfg.Registry,
		Lookup:     cfg.Lookup,
		Translator: cfg.Translator,
		Store:      cfg.Store,
		Bus:        cfg.Bus,
		Sessions:   cfg.Sessions,
		Secret:     cfg.Secret,
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/forms", fh.HandleListForms)
		r.Get("/forms/{name}", fh.HandleGetForm)
		r.Get("/submissions", sh.HandleListSubmissions)
		r.Get("/submissions/{id}", sh.HandleGetSubmission)
		r.Get("/insights", ih.HandleListInsights)
		r.Get("/insights/{form}", ih.HandleGetFormInsights)
		r.Get("/session/ws", wsh.ServeHTTP)
	})
	return r
}

// Run starts the HTTP server with all routes registered and blocks until
// ctx is canceled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("server: listening on %s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
