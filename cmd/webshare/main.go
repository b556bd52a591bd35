// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.astrophena.name/webshare/internal/cli"
	"go.astrophena.name/webshare/internal/cli/envflag"
	"go.astrophena.name/webshare/internal/logger"
	"go.astrophena.name/webshare/internal/netutil"
	"go.astrophena.name/webshare/internal/tunnel"
	"go.astrophena.name/webshare/internal/web"

	"golang.org/x/term"
)

func main() { cli.Main(new(engine)) }

var errFileNotFound = errors.New("cannot find the page to serve")

type engine struct {
	// configuration
	port         *int
	authToken    *string
	skipEmbedded bool

	logf logger.Logf

	// used in tests
	backends []tunnel.Backend
}

func (e *engine) Flags(fs *flag.FlagSet, env *cli.Env) {
	e.port = envflag.Value("port", "WEBSHARE_PORT", 8000, "Local `port` to serve on before tunnelling.", fs, env.Getenv)
	e.authToken = envflag.Value("auth-token", "NGROK_AUTHTOKEN", "", "Ngrok auth `token`. Prompts if omitted and running interactively.", fs, env.Getenv)
	fs.BoolVar(&e.skipEmbedded, "skip-embedded", false, "Skip the embedded ngrok client and go straight to the ngrok CLI.")
}

func (e *engine) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 1 {
		return fmt.Errorf("%w: expected at most one argument", cli.ErrInvalidArgs)
	}
	htmlFile := "index.html"
	if len(env.Args) == 1 {
		htmlFile = env.Args[0]
	}
	htmlFile, err := filepath.Abs(htmlFile)
	if err != nil {
		return err
	}
	if _, err := os.Stat(htmlFile); err != nil {
		return fmt.Errorf("%w: %s", errFileNotFound, htmlFile)
	}

	e.logf = env.Logf

	l, err := netutil.Listen(*e.port)
	if err != nil {
		return err
	}
	port := netutil.Port(l)

	mux := http.NewServeMux()
	mux.Handle("/", serveSingleFile(e.logf, htmlFile))

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	ready := make(chan struct{})
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- web.ListenAndServe(srvCtx, &web.ListenAndServeConfig{
			Listener:    l,
			Mux:         mux,
			Logf:        e.logf,
			LogRequests: true,
			Ready:       func() { close(ready) },
		})
	}()
	select {
	case err := <-srvErr:
		return err
	case <-ready:
	}

	localURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	fmt.Fprintf(env.Stdout, "Serving %s on %s\n", htmlFile, localURL)

	authToken := e.resolveAuthToken(env)

	backends := e.backends
	if backends == nil {
		if !e.skipEmbedded {
			backends = append(backends, tunnel.Embedded{})
		}
		backends = append(backends, &tunnel.CLI{})
	}

	tun, tunErr := tunnel.Establish(ctx, port, authToken, backends...)
	switch {
	case ctx.Err() != nil:
		// Interrupted while establishing; nothing to report.
	case tunErr != nil:
		fmt.Fprintln(env.Stderr, "Unable to launch a public tunnel automatically.")
		fmt.Fprintln(env.Stderr, "Reasons:")
		for _, reason := range tunnel.Reasons(tunErr) {
			fmt.Fprintf(env.Stderr, "  - %s\n", reason)
		}
		fmt.Fprintf(env.Stdout, "The page is still available locally at %s; run 'ngrok http %d' or another tunnelling tool in a network-enabled environment to share it.\n", localURL, port)
		fmt.Fprintln(env.Stdout, "Press Ctrl+C to stop the local server.")
	default:
		fmt.Fprintln(env.Stdout, "Public preview ready:")
		fmt.Fprintln(env.Stdout, tun.URL)
		if authToken == "" {
			fmt.Fprintln(env.Stdout, "(Tip: add an ngrok auth token for longer-lived, faster tunnels.)")
		}
		fmt.Fprintln(env.Stdout, "Press Ctrl+C to stop.")
	}

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		e.closeTunnel(tun)
		return err
	}

	fmt.Fprintln(env.Stdout, "Shutting down...")
	e.closeTunnel(tun)
	// srvCtx is canceled along with ctx; wait for the graceful shutdown to
	// finish so the listening socket is released before we return.
	if err := <-srvErr; err != nil {
		return err
	}

	if tunErr != nil {
		// Ran in degraded local-only mode, already reported above.
		return cli.ErrExitFailure
	}
	return nil
}

// resolveAuthToken returns the ngrok auth token to use: the flag value (which
// envflag already defaults from NGROK_AUTHTOKEN), or one entered interactively
// when stdin is a terminal. An empty result means connecting anonymously.
func (e *engine) resolveAuthToken(env *cli.Env) string {
	if tok := strings.TrimSpace(*e.authToken); tok != "" {
		return tok
	}
	if !interactive(env.Stdin) {
		return ""
	}
	fmt.Fprint(env.Stdout, "Ngrok auth token (press Enter to continue without one): ")
	s := bufio.NewScanner(env.Stdin)
	if s.Scan() {
		return strings.TrimSpace(s.Text())
	}
	return ""
}

// interactive reports whether stdin is attached to a terminal.
func interactive(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (e *engine) closeTunnel(tun *tunnel.Tunnel) {
	if tun == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tun.Close(ctx); err != nil {
		e.logf("Closing tunnel: %v", err)
	}
}

// serveSingleFile returns a handler that serves file on the root path and
// delegates every other path to a static file server rooted at the file's
// directory, so relative assets keep resolving.
func serveSingleFile(logf logger.Logf, file string) http.Handler {
	assets := http.FileServer(http.Dir(filepath.Dir(file)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			web.RespondError(logf, w, web.ErrMethodNotAllowed)
			return
		}
		if r.URL.Path == "/" || r.URL.Path == "" {
			http.ServeFile(w, r, file)
			return
		}
		assets.ServeHTTP(w, r)
	})
}
