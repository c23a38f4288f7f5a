package template

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loadgen/internal/params"
)

// Generator selects a template by weight and materializes an *http.Request
// from it, substituting ${name} placeholders from the reserved request
// metadata plus one value drawn from each named parameter source.
type Generator struct {
	set     *Set
	sources map[string]params.Source
	rng     *rand.Rand
	logger  *zap.Logger
}

func NewGenerator(set *Set, sources map[string]params.Source, rng *rand.Rand, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{set: set, sources: sources, rng: rng, logger: logger}
}

// Generate picks a template and builds the HTTP request for requestID at
// elapsedMs into the run. Failures are wrapped in ErrGenerationFailed; the
// caller must treat them as skipped, not failed, per spec §4.C.
func (g *Generator) Generate(ctx context.Context, requestID, timestampMs, elapsedMs int64) (*http.Request, string, error) {
	tpl := g.set.Select(g.rng)

	user := make(map[string]string, len(g.sources))
	for name, src := range g.sources {
		user[name] = src.Next()
	}
	bag := NewBag(requestID, timestampMs, elapsedMs, user)

	url := substitute(tpl.URLTemplate, bag)
	method := strings.ToUpper(tpl.Method)

	var bodyReader *strings.Reader
	var body string
	switch method {
	case http.MethodGet, http.MethodDelete:
		// No body regardless of any configured body template.
	default:
		if tpl.BodyTemplate != "" {
			body = substitute(tpl.BodyTemplate, bag)
		}
	}
	bodyReader = strings.NewReader(body)

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, tpl.Name, fmt.Errorf("%w: template %q: %v", ErrGenerationFailed, tpl.Name, err)
	}

	for k, v := range tpl.Headers {
		req.Header.Set(k, substitute(v, bag))
	}
	req.Header.Set("X-Loadgen-Request-Id", uuid.NewString())

	return req, tpl.Name, nil
}
