// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package netutil contains small networking helpers.
package netutil

import (
	"net"
	"strconv"
	"time"
)

const probeTimeout = 250 * time.Millisecond

// Listen returns a TCP listener bound to the preferred port, falling back to
// an OS-assigned ephemeral port when something already listens on it.
//
// The occupancy probe is a best-effort heuristic: another process can still
// grab the port between the probe and the bind. Callers read the actual port
// from the returned listener's address.
func Listen(preferred int) (net.Listener, error) {
	if preferred != 0 && !occupied(preferred) {
		l, err := net.Listen("tcp", ":"+strconv.Itoa(preferred))
		if err == nil {
			return l, nil
		}
		// Lost the race for the preferred port, fall back to an ephemeral one.
	}
	return net.Listen("tcp", ":0")
}

// Port returns the TCP port l is bound to.
func Port(l net.Listener) int {
	return l.Addr().(*net.TCPAddr).Port
}

func occupied(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
