package domain

import "errors"

// ErrUnknownLevel is returned when a capability level token is not part of
// the closed level set.
var ErrUnknownLevel = errors.New("unknown capability level")

// ErrUnknownLayout is returned by validation when a reference names a layout
// id that exists in no registry.
var ErrUnknownLayout = errors.New("unknown layout id")
