// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tunnel

import (
	"context"
	"fmt"
	"net/url"

	"golang.ngrok.com/ngrok"
	"golang.ngrok.com/ngrok/config"
)

// Embedded is a [Backend] that uses the ngrok agent SDK in-process, without
// requiring the ngrok binary to be installed.
type Embedded struct{}

// Name implements the [Backend] interface.
func (Embedded) Name() string { return "embedded ngrok client" }

// Open implements the [Backend] interface. It starts an ngrok session and
// forwards the public HTTP endpoint to the local port.
func (Embedded) Open(ctx context.Context, port int, authToken string) (*Tunnel, error) {
	upstream, err := url.Parse(fmt.Sprintf("http://localhost:%d", port))
	if err != nil {
		return nil, err
	}

	opts := []ngrok.ConnectOption{ngrok.WithAuthtokenFromEnv()}
	if authToken != "" {
		opts = append(opts, ngrok.WithAuthtoken(authToken))
	}

	fwd, err := ngrok.ListenAndForward(ctx, upstream, config.HTTPEndpoint(), opts...)
	if err != nil {
		return nil, err
	}

	return &Tunnel{
		URL: fwd.URL(),
		closeFunc: func(context.Context) error {
			return fwd.Close()
		},
	}, nil
}
