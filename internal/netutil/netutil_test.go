// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package netutil

import (
	"net"
	"testing"
)

func TestListenPrefersGivenPort(t *testing.T) {
	t.Parallel()

	// Find a port that is free right now.
	probe, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	free := Port(probe)
	probe.Close()

	l, err := Listen(free)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if got := Port(l); got != free {
		t.Fatalf("want port %d, got %d", free, got)
	}
}

func TestListenFallsBackToEphemeral(t *testing.T) {
	t.Parallel()

	occupier, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer occupier.Close()
	busy := Port(occupier)

	l, err := Listen(busy)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if got := Port(l); got == busy {
		t.Fatalf("Listen returned the occupied port %d", busy)
	}
}
