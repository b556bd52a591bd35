// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package web is a collection of functions and types for building web services.
package web

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.astrophena.name/webshare/internal/logger"
)

// StatusErr is a sentinel error type used to represent HTTP status code errors.
type StatusErr int

// Error implements the error interface.
// It returns a lowercase representation of the HTTP status text for the wrapped code.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	// ErrBadRequest represents a bad request error (HTTP 400).
	ErrBadRequest StatusErr = http.StatusBadRequest
	// ErrNotFound represents a not found error (HTTP 404).
	ErrNotFound StatusErr = http.StatusNotFound
	// ErrMethodNotAllowed represents a method not allowed error (HTTP 405).
	ErrMethodNotAllowed StatusErr = http.StatusMethodNotAllowed
	// ErrInternalServerError represents an internal server error (HTTP 500).
	ErrInternalServerError StatusErr = http.StatusInternalServerError
)

//go:embed templates/error.html
var errorTemplate string

// RespondError writes an error response in HTML format to w and logs the error
// using logf if error is [ErrInternalServerError].
//
// If the error is a StatusErr or wraps it, it extracts the HTTP status code and
// sets the response status code accordingly. Otherwise, it sets the response
// status code to http.StatusInternalServerError.
//
// You can wrap any error with fmt.Errorf to create a StatusErr and set a
// specific HTTP status code:
//
//	// This will set the status code to 404 (Not Found).
//	web.RespondError(logf, w, web.ErrNotFound)
func RespondError(logf logger.Logf, w http.ResponseWriter, err error) {
	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}
	w.WriteHeader(int(se))
	if se == ErrInternalServerError {
		logf("Error %d (%s): %v", se, http.StatusText(int(se)), err)
	}
	fmt.Fprintf(w, errorTemplate, int(se), http.StatusText(int(se)))
}
