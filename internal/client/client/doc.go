// Package client talks to the Vimesta backend.
//
// Client is the contract used by services and upload transports; HTTPClient
// implements it over the REST/JSON API. Every call carries the bearer token
// of the current session and decodes the {success, error, ...} envelope the
// backend wraps all answers in.
//
// # Error Handling
//
// A 401 from any endpoint clears the in-memory token, runs the hooks
// registered with OnUnauthorized and returns ErrUnauthorized. Other failures
// are reported as *APIError (matching ErrNotFound or ErrUnavailable through
// errors.Is where the status allows), ErrInvalidResponse for bodies that are
// not the expected JSON, and ErrUnavailable for network errors.
//
// The package also bootstraps the local SQLite database (InitDatabase,
// RunMigrations) with embedded goose migrations.
package client
