// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package tunnel establishes a publicly reachable URL that forwards to a local
// port, trying multiple backends in order.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Tunnel is a handle to an established tunnel: its public URL and a teardown
// action.
type Tunnel struct {
	// URL is the publicly reachable URL of the tunnel.
	URL string

	closeOnce sync.Once
	closeFunc func(context.Context) error
}

// New returns a handle to an established tunnel with the given public URL and
// teardown action.
func New(url string, close func(context.Context) error) *Tunnel {
	return &Tunnel{URL: url, closeFunc: close}
}

// Close tears the tunnel down. It is safe to call multiple times; only the
// first call releases the tunnel.
func (t *Tunnel) Close(ctx context.Context) error {
	var err error
	t.closeOnce.Do(func() {
		if t.closeFunc != nil {
			err = t.closeFunc(ctx)
		}
	})
	return err
}

// Backend is a single strategy for establishing a tunnel.
type Backend interface {
	// Name identifies the backend in error messages.
	Name() string
	// Open establishes a tunnel forwarding to the given local port. An empty
	// authToken means connecting anonymously.
	Open(ctx context.Context, port int, authToken string) (*Tunnel, error)
}

// Establish tries each backend in order and returns the first successfully
// established tunnel.
//
// When every backend fails, it returns an error joining each backend's
// failure; the individual reasons are recoverable with [Reasons].
func Establish(ctx context.Context, port int, authToken string, backends ...Backend) (*Tunnel, error) {
	if len(backends) == 0 {
		return nil, errors.New("no tunnel backends to try")
	}
	var errs []error
	for _, b := range backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := b.Open(ctx, port, authToken)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		return t, nil
	}
	return nil, errors.Join(errs...)
}

// Reasons unpacks an error returned by [Establish] into per-backend failure
// reasons.
func Reasons(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var reasons []string
	for _, e := range joined.Unwrap() {
		reasons = append(reasons, e.Error())
	}
	return reasons
}
