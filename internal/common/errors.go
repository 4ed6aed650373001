package common

import "errors"

var (
	// ErrNotConfirmed is returned when the user declines an irreversible action.
	ErrNotConfirmed = errors.New("action not confirmed")

	// ErrNotLoggedIn is returned by commands that need an authenticated session.
	ErrNotLoggedIn = errors.New("not logged in")
)
