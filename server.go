// Package trainfinder is the HTTP surface of the smart train finder: a
// journey search API over the DB Timetables data for one fixed corridor.
package trainfinder

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/denizpo/smart-train-finder/config"
	"github.com/denizpo/smart-train-finder/journey"
)

// JourneyFinder is what the HTTP layer needs from the search engine.
type JourneyFinder interface {
	FindJourneys(ctx context.Context, from, to journey.Station, start time.Time, opts journey.Options) []journey.Itinerary
}

// App wires the search engine into the HTTP handlers.
type App struct {
	Cfg    *config.AppConfig
	Finder JourneyFinder

	server *http.Server
}

// Router builds the chi router with CORS and the API routes.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	r.Get("/api/health", a.handleHealth)
	r.Get("/api/trips", a.handleTrips)
	return r
}

// Start launches the HTTP server in the background.
func (a *App) Start() {
	addr := fmt.Sprintf(":%d", a.Cfg.Server.Port)
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second, // a cold search can take a while
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM and drains the server.
func (a *App) HandleGracefulShutdown(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	cancel()
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		} else {
			log.Printf("server shut down successfully")
		}
	}
}
