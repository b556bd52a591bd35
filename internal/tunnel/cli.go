// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tunnel

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// CLI is a [Backend] that drives the ngrok command-line executable as a
// subprocess, parsing its log output for the public URL.
type CLI struct {
	// Path is the ngrok executable to run. If empty, "ngrok" is looked up on
	// PATH.
	Path string
	// Timeout bounds how long to wait for the executable to report a public
	// URL. Defaults to 30 seconds.
	Timeout time.Duration
	// Environ is the base environment for the subprocess. If nil, the current
	// process environment is used.
	Environ []string
}

// ErrNoPublicURL is returned when the executable exits or the timeout elapses
// before a public URL appears in its output.
var ErrNoPublicURL = errors.New("ngrok CLI did not report a public URL")

var urlRe = regexp.MustCompile(`url=(https?://\S+)`)

// Name implements the [Backend] interface.
func (b *CLI) Name() string { return "ngrok CLI" }

// Open implements the [Backend] interface.
func (b *CLI) Open(ctx context.Context, port int, authToken string) (*Tunnel, error) {
	exe := b.Path
	if exe == "" {
		var err error
		exe, err = exec.LookPath("ngrok")
		if err != nil {
			return nil, errors.New("ngrok CLI is not installed or not on PATH")
		}
	}

	environ := b.Environ
	if environ == nil {
		environ = os.Environ()
	}
	// Pass the token through the environment, but never override one the
	// caller already set.
	if authToken != "" && !envSet(environ, "NGROK_AUTHTOKEN") {
		environ = append(environ[:len(environ):len(environ)], "NGROK_AUTHTOKEN="+authToken)
	}

	cmd := exec.Command(exe, "http", strconv.Itoa(port), "--log=stdout")
	cmd.Env = environ
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		s := bufio.NewScanner(stdout)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-done:
				return
			}
		}
	}()

	timeout := b.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var publicURL string
scan:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// The executable exited or closed its output.
				break scan
			}
			if m := urlRe.FindStringSubmatch(line); m != nil {
				candidate := m[1]
				// Prefer HTTPS if both are emitted.
				if strings.HasPrefix(candidate, "https://") {
					publicURL = candidate
					break scan
				}
				if publicURL == "" {
					publicURL = candidate
				}
			}
			if strings.Contains(line, "err=") {
				terminate(cmd)
				return nil, errors.New(strings.TrimSpace(line))
			}
		case <-deadline.C:
			break scan
		case <-ctx.Done():
			terminate(cmd)
			return nil, ctx.Err()
		}
	}

	if publicURL == "" {
		terminate(cmd)
		return nil, ErrNoPublicURL
	}

	return &Tunnel{
		URL: publicURL,
		closeFunc: func(context.Context) error {
			return terminate(cmd)
		},
	}, nil
}

// terminate stops the subprocess, waiting briefly before force-killing it.
func terminate(cmd *exec.Cmd) error {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		cmd.Process.Kill()
	}

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		cmd.Process.Kill()
		<-waited
	}
	return nil
}

func envSet(environ []string, name string) bool {
	for _, kv := range environ {
		if strings.HasPrefix(kv, name+"=") {
			return true
		}
	}
	return false
}
