package render

import "errors"

// ErrUnknownFormat is returned when no renderer is registered under a name.
var ErrUnknownFormat = errors.New("unknown render format")
