package server

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// New builds the HTTP server with bounded read/write deadlines so slow
// clients cannot pin handler goroutines.
func New(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
