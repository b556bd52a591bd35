// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Webshare publishes a local HTML page on the public internet for short-lived
demos.

It serves the page (together with any assets next to it) from a local HTTP
server, then opens an ngrok tunnel pointed at it and prints the public URL.
When no tunnel can be established, the page stays available locally and
webshare prints instructions for sharing it manually.

# Usage

	$ webshare [flags...] [file.html]

The page defaults to index.html in the current directory. An ngrok auth token
is picked up from the -auth-token flag or the NGROK_AUTHTOKEN environment
variable; without one the tunnel is anonymous, with provider-imposed limits.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/webshare/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
