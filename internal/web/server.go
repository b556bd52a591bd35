// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.astrophena.name/webshare/internal/logger"
)

// ListenAndServeConfig is used to configure the HTTP server started by
// [ListenAndServe].
//
// All fields of ListenAndServeConfig can't be modified after [ListenAndServe]
// is called.
type ListenAndServeConfig struct {
	// Addr is a network address to listen on (in the form of "host:port").
	// Ignored if Listener is set.
	Addr string
	// Listener is an optional pre-bound listener to serve on. ListenAndServe
	// closes it on return.
	Listener net.Listener
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Logf specifies a logger to use. If nil, log.Printf is used.
	Logf logger.Logf
	// Ready is an optional function that is called when the server is ready to
	// accept connections.
	Ready func()
	// LogRequests specifies whether to log a line per served request (method,
	// path, status).
	LogRequests bool
}

var (
	errNoAddr = errors.New("c.Addr is empty and c.Listener is nil")
	errNilMux = errors.New("c.Mux is nil")
)

// ListenAndServe starts the HTTP server based on the provided
// [ListenAndServeConfig]. It blocks until ctx is canceled, then gracefully
// shuts the server down, releasing the listening socket before returning.
func ListenAndServe(ctx context.Context, c *ListenAndServeConfig) error {
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	if c.Mux == nil {
		return errNilMux
	}

	l := c.Listener
	if l == nil {
		if c.Addr == "" {
			return errNoAddr
		}
		var err error
		l, err = net.Listen("tcp", c.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen: %v", err)
		}
	}
	defer l.Close()
	c.Logf("Listening on %s...", l.Addr().String())

	var handler http.Handler = c.Mux
	if c.LogRequests {
		handler = logRequests(c.Logf, handler)
	}

	s := &http.Server{
		ErrorLog: log.New(c.Logf, "", 0),
		Handler:  handler,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := s.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				errCh <- err
			}
		}
	}()

	if c.Ready != nil {
		c.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logf("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

// logRequests wraps h, writing a minimal line per request (method, path and
// status) to logf.
func logRequests(logf logger.Logf, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)
		logf("%s %s %d", r.Method, r.URL.Path, sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
