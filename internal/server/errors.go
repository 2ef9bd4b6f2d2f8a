package server

import "errors"

// ErrInvalidSeed is returned for a seed parameter that is not an unsigned integer.
var ErrInvalidSeed = errors.New("invalid seed: must be an unsigned integer")
