// Package httpserver builds the API server with timeouts sized for the
// decision flow.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	// A decide call may retry each of its tools to exhaustion before
	// answering, so the write timeout is the most generous.
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// New builds the HTTP server for the given address and handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
