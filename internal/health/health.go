// Package health serves the optional HTTP health endpoint.
//
// The MCP protocol runs on stdio; this listener exists only so process
// supervisors can probe liveness and readiness. It is disabled unless an
// address is configured.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Check reports whether a dependency is ready.
type Check func() error

// NewServer builds the health HTTP server. checks run on /readyz; /healthz
// answers as long as the process is alive.
func NewServer(addr string, checks map[string]Check) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		for name, check := range checks {
			if err := check(); err != nil {
				log.Warn().Str("check", name).Err(err).Msg("readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(name + ": " + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}
