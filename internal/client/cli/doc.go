// Package cli provides the interactive gophtodo command-line client.
//
// NewApp wires the local token database, the request dispatcher, the API
// client, the session and the router. Run restores a persisted session,
// starts the background token refresher and hands control to the REPL, which
// blocks until the user exits.
//
// Pages are router locations rendered as text. Every navigation goes through
// the auth guard, and any 401 answer from the API clears the session and
// sends the user to /login.
package cli
