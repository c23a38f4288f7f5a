package template

import "errors"

// ErrInvalidTemplate marks a ConfigInvalid-class construction failure in a
// request template set (e.g. a non-positive weight).
var ErrInvalidTemplate = errors.New("invalid request template")

// ErrGenerationFailed is the RequestGenerationFailed error kind: synthesis
// of a concrete HTTP request from a template failed. The controller treats
// requests that fail this way as skipped, not failed.
var ErrGenerationFailed = errors.New("request generation failed")
