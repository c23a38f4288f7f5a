package config

import "errors"

// ErrInvalid is the ConfigInvalid error kind: surfaced at startup, fatal,
// and always names the violating field in its wrapped message.
var ErrInvalid = errors.New("invalid configuration")
