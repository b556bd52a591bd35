// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tunnel

import (
	"context"
	"errors"
	"testing"

	"go.astrophena.name/webshare/internal/testutil"
)

type stubBackend struct {
	name string
	url  string
	err  error

	opened   int
	closed   int
	gotPort  int
	gotToken string
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Open(ctx context.Context, port int, authToken string) (*Tunnel, error) {
	b.opened++
	b.gotPort = port
	b.gotToken = authToken
	if b.err != nil {
		return nil, b.err
	}
	return &Tunnel{
		URL: b.url,
		closeFunc: func(context.Context) error {
			b.closed++
			return nil
		},
	}, nil
}

func TestEstablishShortCircuitsOnSuccess(t *testing.T) {
	t.Parallel()

	first := &stubBackend{name: "first", url: "https://first.example"}
	second := &stubBackend{name: "second", url: "https://second.example"}

	tun, err := Establish(context.Background(), 8080, "token", first, second)
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, tun.URL, "https://first.example")
	testutil.AssertEqual(t, first.gotPort, 8080)
	testutil.AssertEqual(t, first.gotToken, "token")
	if second.opened != 0 {
		t.Errorf("second backend must not be tried, was opened %d times", second.opened)
	}
}

func TestEstablishFallsThroughToNextBackend(t *testing.T) {
	t.Parallel()

	first := &stubBackend{name: "first", err: errors.New("boom")}
	second := &stubBackend{name: "second", url: "https://second.example"}

	tun, err := Establish(context.Background(), 8080, "", first, second)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, tun.URL, "https://second.example")
}

func TestEstablishAccumulatesReasons(t *testing.T) {
	t.Parallel()

	first := &stubBackend{name: "first", err: errors.New("boom")}
	second := &stubBackend{name: "second", err: errors.New("nope")}

	tun, err := Establish(context.Background(), 8080, "", first, second)
	if tun != nil {
		t.Fatal("must not return a tunnel")
	}
	if err == nil {
		t.Fatal("must fail")
	}

	testutil.AssertEqual(t, Reasons(err), []string{"first: boom", "second: nope"})
}

func TestEstablishStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &stubBackend{name: "first", url: "https://first.example"}
	if _, err := Establish(ctx, 8080, "", b); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if b.opened != 0 {
		t.Errorf("backend must not be tried after cancellation, was opened %d times", b.opened)
	}
}

func TestTunnelCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	b := &stubBackend{name: "first", url: "https://first.example"}
	tun, err := Establish(context.Background(), 8080, "", b)
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if err := tun.Close(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	testutil.AssertEqual(t, b.closed, 1)
}
