// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package envflag

import (
	"flag"
	"testing"
)

func TestValue(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		env      map[string]string
		args     []string
		wantPort int
		wantTok  string
	}{
		"defaults": {
			wantPort: 8000,
			wantTok:  "",
		},
		"environment overrides default": {
			env:      map[string]string{"PORT": "9090", "TOKEN": "from-env"},
			wantPort: 9090,
			wantTok:  "from-env",
		},
		"flag wins over environment": {
			env:      map[string]string{"PORT": "9090", "TOKEN": "from-env"},
			args:     []string{"-port=7070", "-token=from-flag"},
			wantPort: 7070,
			wantTok:  "from-flag",
		},
		"malformed environment value is ignored": {
			env:      map[string]string{"PORT": "not-a-port"},
			wantPort: 8000,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			getenv := func(name string) string { return tc.env[name] }
			fs := flag.NewFlagSet("test", flag.ContinueOnError)

			port := Value("port", "PORT", 8000, "Port.", fs, getenv)
			tok := Value("token", "TOKEN", "", "Token.", fs, getenv)

			if err := fs.Parse(tc.args); err != nil {
				t.Fatal(err)
			}

			if *port != tc.wantPort {
				t.Errorf("want port %d, got %d", tc.wantPort, *port)
			}
			if *tok != tc.wantTok {
				t.Errorf("want token %q, got %q", tc.wantTok, *tok)
			}
		})
	}
}
