// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
		wantInBody string
	}{
		"not found": {
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantInBody: "404 Not Found",
		},
		"wrapped status error": {
			err:        fmt.Errorf("page %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantInBody: "404 Not Found",
		},
		"method not allowed": {
			err:        ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantInBody: "405 Method Not Allowed",
		},
		"generic error becomes 500": {
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantInBody: "500 Internal Server Error",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(t.Logf, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("want status %d, got %d", tc.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.wantInBody) {
				t.Errorf("body must contain %q, got %q", tc.wantInBody, rec.Body.String())
			}
		})
	}
}
