package common

import "errors"

var (
	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrNotAuthenticated = errors.New("not authenticated")
)
