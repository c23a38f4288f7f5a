// Package template implements request template storage, weighted selection,
// and materialization of a concrete HTTP request from a template plus a
// parameter bag.
package template

import (
	"fmt"
	"math/rand"
)

// Template is an immutable HTTP request skeleton. URL, headers, and body
// may contain ${name} placeholders substituted at generation time.
type Template struct {
	Name         string
	Weight       int
	Method       string
	URLTemplate  string
	Headers      map[string]string
	BodyTemplate string
}

// Set holds an ordered collection of templates plus the prefix-sum table
// used for weighted reservoir selection.
type Set struct {
	templates []Template
	prefix    []int
	total     int
}

// NewSet validates every template carries weight >= 1 and a non-empty
// name/method/URL, then precomputes the weighted-selection prefix sums.
func NewSet(templates []Template) (*Set, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: at least one request template is required", ErrInvalidTemplate)
	}
	prefix := make([]int, len(templates))
	total := 0
	for i, tpl := range templates {
		if tpl.Weight < 1 {
			return nil, fmt.Errorf("%w: template %q: weight must be >= 1, got %d", ErrInvalidTemplate, tpl.Name, tpl.Weight)
		}
		if tpl.Name == "" {
			return nil, fmt.Errorf("%w: template at index %d: name is required", ErrInvalidTemplate, i)
		}
		if tpl.Method == "" {
			return nil, fmt.Errorf("%w: template %q: method is required", ErrInvalidTemplate, tpl.Name)
		}
		if tpl.URLTemplate == "" {
			return nil, fmt.Errorf("%w: template %q: urlTemplate is required", ErrInvalidTemplate, tpl.Name)
		}
		total += tpl.Weight
		prefix[i] = total
	}
	return &Set{templates: templates, prefix: prefix, total: total}, nil
}

// Select performs a weighted reservoir pick: draw U in [0, total) and
// return the first template whose prefix sum exceeds U. With a single
// template this degenerates to a direct pick.
func (s *Set) Select(rng *rand.Rand) Template {
	if len(s.templates) == 1 {
		return s.templates[0]
	}
	u := rng.Intn(s.total)
	for i, p := range s.prefix {
		if p > u {
			return s.templates[i]
		}
	}
	// Unreachable given total == prefix[len-1], but guards against float
	// drift if total is ever computed differently.
	return s.templates[len(s.templates)-1]
}

func (s *Set) Len() int { return len(s.templates) }
