package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmptyToken   = errors.New("server returned an empty access token")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method string
	Path   string
	Status int
	// Detail is the server supplied message, empty when none was sent.
	Detail string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes errors.Is(err, ErrUnauthorized) true for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Kind is the client-side error taxonomy.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

// Classify maps err to a Kind using only status/transport information.
//
//	400, 422          -> KindValidation
//	401, 403          -> KindAuth
//	no response       -> KindNetwork
//	anything else     -> KindServer
func Classify(err error) Kind {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return KindValidation
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		default:
			return KindServer
		}
	case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	default:
		return KindServer
	}
}

// Detail returns the server supplied message carried by err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// parseDetail extracts the "detail" field of an error body. The API sends
// either a string or a list of validation items; for the latter the first
// item's "msg" is used.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}
	return ""
}
