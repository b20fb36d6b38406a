// Package client talks to the to-do REST API.
//
// # Overview
//
//  1. Dispatcher: the single path every request takes. It adds
//     Content-Type/Accept headers and "Authorization: Bearer <token>" when a
//     token is present, and intercepts 401 responses by running the hooks
//     registered with OnUnauthorized before the error is returned.
//  2. HTTPClient: stateless request functions for auth, todos and categories
//     (see AuthAPI, TodoAPI, CategoryAPI).
//
// # Error Handling
//
// Non-2xx responses come back as *APIError carrying the status and the
// server's "detail" message. Transport failures and timeouts wrap
// ErrUnavailable. A 401 matches errors.Is(err, ErrUnauthorized). Classify
// maps any of these to a Kind (validation, auth, network, server) without
// callers having to inspect HTTP details.
//
// # Concurrency
//
// Dispatcher and HTTPClient are safe for concurrent use. All operations take
// a context.Context; the Dispatcher also enforces its fixed timeout.
package client
