package params

import "errors"

// ErrInvalidSource marks a ConfigInvalid-class construction failure in a
// parameter source; the CLI's source wiring wraps it with the
// parameterSources.<name> field it came from.
var ErrInvalidSource = errors.New("invalid parameter source")
