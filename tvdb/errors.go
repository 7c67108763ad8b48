package tvdb

import "errors"

// Errors returned by the TVDB client on top of the shared transport
// error classification.
var (
	// ErrMissingToken indicates the login response carried no token.
	ErrMissingToken = errors.New("no token in authentication response")

	// ErrInvalidID indicates a series identifier that is neither a
	// number nor a prefixed search ID like "series-79349".
	ErrInvalidID = errors.New("invalid series ID")
)
