package httpserver

import (
	"net/http"
	"time"

	"somiti-server/internal/config"
)

// requestTimeout bounds a single handler. Report endpoints load every member
// and transaction, so it is set well above a plain lookup.
const requestTimeout = 30 * time.Second

// New serves the somiti API on cfg.HTTPPort. The write timeout leaves room
// for the router to answer 503 once requestTimeout expires.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
