package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationShorthand(t *testing.T) {
	d, err := ParseDuration("10m")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, d)
}

func TestParseDurationISO8601(t *testing.T) {
	d, err := ParseDuration("PT1H30M")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)
}

func TestParseDurationRejectsEmpty(t *testing.T) {
	_, err := ParseDuration("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildRejectsBlankName(t *testing.T) {
	doc := &Document{Name: "  ", TestDuration: "1s", TargetServiceUrl: "http://x"}
	_, err := Build(doc, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildRejectsMissingTemplates(t *testing.T) {
	doc := &Document{
		Name: "t", TestDuration: "1s", TargetServiceUrl: "http://x",
		TrafficPattern: TrafficPatternDoc{Type: "stable", TargetTps: 10},
		ThreadPool:     ThreadPoolDoc{CoreSize: 1, MaxSize: 1},
	}
	_, err := Build(doc, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBuildFullStableSpec(t *testing.T) {
	doc := &Document{
		Name: "smoke", TestDuration: "2s", TargetServiceUrl: "http://example.com",
		TrafficPattern: TrafficPatternDoc{Type: "Stable", TargetTps: 50},
		ThreadPool:     ThreadPoolDoc{CoreSize: 2, MaxSize: 4, QueueSize: 8},
		RequestTemplates: []RequestTemplateDoc{
			{Name: "get", Weight: 1, Method: "GET", URLTemplate: "http://example.com/${id}"},
		},
		ParameterSources: map[string]ParamSourceDoc{
			"id": {Type: "random", Distribution: "uniform", Min: 1, Max: 100},
		},
	}
	spec, err := Build(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "smoke", spec.Name)
	assert.Equal(t, 2*time.Second, spec.TestDuration)
	assert.Equal(t, 50.0, spec.Profile.TpsAt(0, 2000))
	require.Contains(t, spec.ParameterSpecs, "id")
}

func TestBuildCustomPatternFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pattern.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,tps\n0,10\n1000,50\n"), 0o644))

	doc := &Document{
		Name: "ramp-custom", TestDuration: "2s", TargetServiceUrl: "http://x",
		TrafficPattern: TrafficPatternDoc{Type: "custom", PatternFile: path, TimeInMilliseconds: true},
		ThreadPool:     ThreadPoolDoc{CoreSize: 1, MaxSize: 1},
		RequestTemplates: []RequestTemplateDoc{
			{Name: "get", Weight: 1, Method: "GET", URLTemplate: "http://x"},
		},
	}
	spec, err := Build(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, spec.Profile.TpsAt(0, 2000))
	assert.Equal(t, 50.0, spec.Profile.TpsAt(1000, 2000))
}

func TestBuildCircuitBreakerValidation(t *testing.T) {
	doc := baseValidDoc()
	doc.CircuitBreaker = CircuitBreakerDoc{Enabled: true, ErrorThreshold: 1.5, WindowSize: 10}
	_, err := Build(doc, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func baseValidDoc() *Document {
	return &Document{
		Name: "base", TestDuration: "1s", TargetServiceUrl: "http://x",
		TrafficPattern: TrafficPatternDoc{Type: "stable", TargetTps: 10},
		ThreadPool:     ThreadPoolDoc{CoreSize: 1, MaxSize: 1},
		RequestTemplates: []RequestTemplateDoc{
			{Name: "get", Weight: 1, Method: "GET", URLTemplate: "http://x"},
		},
	}
}
