package types

import "errors"

// Domain errors for type validation
var (
	errInvalidCoveredLines   = errors.New("covered lines must be strictly increasing and unique")
	errCoveredLineOutOfRange = errors.New("covered line outside [1, totalLines]")
)
