// Package validator implements the composable response-validation pipeline:
// each rule is a predicate over (status, headers, body); failures are
// aggregated with go.uber.org/multierr for reporting.
package validator

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"go.uber.org/multierr"
)

// Failure names one rule's rejection.
type Failure struct {
	Kind        string
	Description string
}

// Rule is a single composable predicate. Name identifies the rule kind in
// a Failure; Check returns (ok, description-on-failure).
type Rule struct {
	Name  string
	Check func(status int, headers http.Header, body []byte) (bool, string)
}

// Validator runs an ordered set of Rules against a response.
type Validator struct {
	rules []Rule
}

// New builds a Validator from the given rules. A Validator with zero rules
// is valid but Validate will always report ok purely from the default
// 200<=status<300 check performed by the caller when no Validator is
// configured at all (see spec §4.E) — callers that do construct one with
// New(nil) still run an empty rule set and thus always accept.
func New(rules []Rule) *Validator {
	return &Validator{rules: rules}
}

// Validate runs every rule and returns ok = true only if all passed,
// alongside the list of rule failures and a combined multierr error useful
// for logging.
func (v *Validator) Validate(status int, headers http.Header, body []byte) (bool, []Failure, error) {
	var failures []Failure
	var combined error
	for _, r := range v.rules {
		ok, desc := r.Check(status, headers, body)
		if !ok {
			failures = append(failures, Failure{Kind: r.Name, Description: desc})
			combined = multierr.Append(combined, fmt.Errorf("%s: %s", r.Name, desc))
		}
	}
	return len(failures) == 0, failures, combined
}

// DefaultSuccess is the success predicate used when no Validator is
// configured: 200 <= status < 300.
func DefaultSuccess(status int) bool {
	return status >= 200 && status < 300
}

// StatusRange builds a rule requiring min <= status <= max.
func StatusRange(min, max int) Rule {
	return Rule{
		Name: "statusRange",
		Check: func(status int, _ http.Header, _ []byte) (bool, string) {
			if status >= min && status <= max {
				return true, ""
			}
			return false, fmt.Sprintf("status %d outside [%d,%d]", status, min, max)
		},
	}
}

// BodyContains builds a rule requiring the body to contain substr.
func BodyContains(substr string) Rule {
	return Rule{
		Name: "bodyContains",
		Check: func(_ int, _ http.Header, body []byte) (bool, string) {
			if bytes.Contains(body, []byte(substr)) {
				return true, ""
			}
			return false, fmt.Sprintf("body does not contain %q", substr)
		},
	}
}

// BodyMatches builds a rule requiring the body to match a regular expression.
func BodyMatches(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid body regex %q: %w", pattern, err)
	}
	return Rule{
		Name: "bodyMatches",
		Check: func(_ int, _ http.Header, body []byte) (bool, string) {
			if re.Match(body) {
				return true, ""
			}
			return false, fmt.Sprintf("body does not match %q", pattern)
		},
	}, nil
}

// HeaderEquals builds a rule requiring header key to equal want.
func HeaderEquals(key, want string) Rule {
	return Rule{
		Name: "headerEquals",
		Check: func(_ int, headers http.Header, _ []byte) (bool, string) {
			got := headers.Get(key)
			if got == want {
				return true, ""
			}
			return false, fmt.Sprintf("header %q = %q, want %q", key, got, want)
		},
	}
}

// BodySizeRange builds a rule requiring the body's byte length to fall in
// [min, max].
func BodySizeRange(min, max int) Rule {
	return Rule{
		Name: "bodySizeRange",
		Check: func(_ int, _ http.Header, body []byte) (bool, string) {
			n := len(body)
			if n >= min && n <= max {
				return true, ""
			}
			return false, fmt.Sprintf("body size %d outside [%d,%d]", n, min, max)
		},
	}
}

// Custom wraps an arbitrary predicate closure as a named rule.
func Custom(name string, check func(status int, headers http.Header, body []byte) (bool, string)) Rule {
	return Rule{Name: name, Check: check}
}

// DecodeBody is exposed so callers can normalize a response body (e.g.
// brotli-decoded) before handing it to Validate; it just drains r fully.
func DecodeBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
