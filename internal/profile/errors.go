package profile

import "errors"

// ErrInvalidProfile marks a ConfigInvalid-class construction failure in a
// traffic profile; config.Build returns it as is, and its message names the
// violating field.
var ErrInvalidProfile = errors.New("invalid traffic profile")
