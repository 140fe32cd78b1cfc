// Package common contains constants and sentinel errors shared by the
// client packages.
package common

// AuthorizationHeader carries the bearer token on outbound API requests.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// Keys of the persisted session in the local key/value store. Absence of
// either key means the user is not signed in.
const (
	TokenStorageKey = "vimesta_token"
	UserStorageKey  = "vimesta_user"
)
