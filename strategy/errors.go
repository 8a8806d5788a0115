package strategy

import "errors"

// ErrNoNames indicates that a Spread policy was given no slot names.
var ErrNoNames = errors.New("no slot names to spread over")
