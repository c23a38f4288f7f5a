package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"loadgen/internal/params"
	"loadgen/internal/profile"
	"loadgen/internal/template"
)

// ThreadPoolSpec is the validated worker pool sizing.
type ThreadPoolSpec struct {
	CoreSize      int
	MaxSize       int
	QueueSize     int
	KeepAliveTime time.Duration
}

// CircuitBreakerSpec is the validated breaker configuration.
type CircuitBreakerSpec struct {
	Enabled        bool
	ErrorThreshold float64
	WindowSize     int
}

// ResourceMonitoringSpec controls the optional resource sampler.
type ResourceMonitoringSpec struct {
	Enabled        bool
	SampleInterval time.Duration
}

// LiveServerSpec controls the optional live status server.
type LiveServerSpec struct {
	Enabled bool
	Addr    string
}

// MetricsSpec is the validated metrics configuration.
type MetricsSpec struct {
	ResponseTimePercentiles []int
	OutputFile              string
	ResourceMonitoring      ResourceMonitoringSpec
	LiveServer              LiveServerSpec
}

// TestSpec is the fully validated, immutable description of one load test
// run, built from a Document plus the live component objects it selects.
type TestSpec struct {
	Name             string
	TargetServiceUrl string
	TestDuration     time.Duration
	Seed             string
	Profile          profile.Profile
	ThreadPool       ThreadPoolSpec
	Templates        *template.Set
	ParameterSpecs   map[string]params.Spec
	Metrics          MetricsSpec
	CircuitBreaker   CircuitBreakerSpec
}

// Build validates doc and constructs the live collaborator objects
// (traffic profile, template set) it references. Parameter sources are
// left as Spec values; the caller turns them into live Source instances
// with params.Build (the CLI does so before constructing the engine).
func Build(doc *Document, logger *zap.Logger) (*TestSpec, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("%w: name must be non-blank", ErrInvalid)
	}

	dur, err := ParseDuration(doc.TestDuration)
	if err != nil {
		return nil, err
	}
	if dur <= 0 {
		return nil, fmt.Errorf("%w: testDuration must be > 0", ErrInvalid)
	}

	prof, err := buildProfile(doc.TrafficPattern, logger)
	if err != nil {
		return nil, err
	}

	pool, err := buildThreadPool(doc.ThreadPool)
	if err != nil {
		return nil, err
	}

	if len(doc.RequestTemplates) == 0 {
		return nil, fmt.Errorf("%w: at least one requestTemplate is required", ErrInvalid)
	}
	templates := make([]template.Template, 0, len(doc.RequestTemplates))
	for _, t := range doc.RequestTemplates {
		templates = append(templates, template.Template{
			Name:         t.Name,
			Weight:       t.Weight,
			Method:       t.Method,
			URLTemplate:  t.URLTemplate,
			Headers:      t.Headers,
			BodyTemplate: t.BodyTemplate,
		})
	}
	templateSet, err := template.NewSet(templates)
	if err != nil {
		return nil, err
	}

	paramSpecs, err := buildParamSpecs(doc.ParameterSources)
	if err != nil {
		return nil, err
	}

	metricsSpec, err := buildMetrics(doc.Metrics)
	if err != nil {
		return nil, err
	}

	breakerSpec, err := buildCircuitBreaker(doc.CircuitBreaker)
	if err != nil {
		return nil, err
	}

	if doc.TargetServiceUrl == "" {
		return nil, fmt.Errorf("%w: targetServiceUrl is required", ErrInvalid)
	}

	return &TestSpec{
		Name:             doc.Name,
		TargetServiceUrl: doc.TargetServiceUrl,
		TestDuration:     dur,
		Seed:             doc.Seed,
		Profile:          prof,
		ThreadPool:       pool,
		Templates:        templateSet,
		ParameterSpecs:   paramSpecs,
		Metrics:          metricsSpec,
		CircuitBreaker:   breakerSpec,
	}, nil
}

func buildProfile(p TrafficPatternDoc, logger *zap.Logger) (profile.Profile, error) {
	switch strings.ToLower(p.Type) {
	case "stable":
		return profile.NewStable(p.TargetTps)
	case "rampup", "ramp":
		rampMillis, err := durationToMillis(p.RampDuration)
		if err != nil {
			return nil, err
		}
		return profile.NewRamp(p.StartTps, p.TargetTps, rampMillis)
	case "spike":
		startMillis, err := durationToMillis(p.SpikeStartTime)
		if err != nil {
			return nil, err
		}
		durMillis, err := durationToMillis(p.SpikeDuration)
		if err != nil {
			return nil, err
		}
		return profile.NewSpike(p.TargetTps, p.SpikeTps, startMillis, durMillis)
	case "custom":
		if p.PatternFile == "" {
			return nil, fmt.Errorf("%w: custom traffic pattern requires patternFile", ErrInvalid)
		}
		return profile.LoadPatternFile(p.PatternFile, !p.TimeInMilliseconds, logger)
	default:
		return nil, fmt.Errorf("%w: unknown trafficPattern.type %q", ErrInvalid, p.Type)
	}
}

func durationToMillis(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}

func buildThreadPool(t ThreadPoolDoc) (ThreadPoolSpec, error) {
	if t.CoreSize < 1 {
		return ThreadPoolSpec{}, fmt.Errorf("%w: threadPool.coreSize must be >= 1", ErrInvalid)
	}
	if t.MaxSize < t.CoreSize {
		return ThreadPoolSpec{}, fmt.Errorf("%w: threadPool.maxSize must be >= coreSize", ErrInvalid)
	}
	if t.QueueSize < 0 {
		return ThreadPoolSpec{}, fmt.Errorf("%w: threadPool.queueSize must be >= 0", ErrInvalid)
	}
	keepAlive := 60 * time.Second
	if t.KeepAliveTime != "" {
		d, err := ParseDuration(t.KeepAliveTime)
		if err != nil {
			return ThreadPoolSpec{}, err
		}
		keepAlive = d
	}
	return ThreadPoolSpec{CoreSize: t.CoreSize, MaxSize: t.MaxSize, QueueSize: t.QueueSize, KeepAliveTime: keepAlive}, nil
}

func buildParamSpecs(docs map[string]ParamSourceDoc) (map[string]params.Spec, error) {
	out := make(map[string]params.Spec, len(docs))
	for name, d := range docs {
		spec := params.Spec{
			Type:         d.Type,
			Distribution: d.Distribution,
			Selection:    d.Selection,
			Mean:         d.Mean,
			Stddev:       d.Stddev,
			Path:         d.Path,
			Column:       d.Column,
			MaxLines:     d.MaxLines,
			Secret:       d.Secret,
			Claims:       d.Claims,
			RedisAddr:    d.RedisAddr,
			RedisKey:     d.RedisKey,
			SQLDriver:    d.SQLDriver,
			SQLDSN:       d.SQLDSN,
			SQLQuery:     d.SQLQuery,
		}
		if len(d.Range) == 2 {
			spec.Min, spec.Max = d.Range[0], d.Range[1]
		} else {
			spec.Min, spec.Max = d.Min, d.Max
		}
		if d.TTL != "" {
			ttl, err := ParseDuration(d.TTL)
			if err != nil {
				return nil, fmt.Errorf("%w: parameterSources.%s.ttl: %v", ErrInvalid, name, err)
			}
			spec.TTL = ttl
		}
		out[name] = spec
	}
	return out, nil
}

func buildMetrics(m MetricsDoc) (MetricsSpec, error) {
	spec := MetricsSpec{
		ResponseTimePercentiles: m.ResponseTimePercentiles,
		OutputFile:              m.OutputFile,
		LiveServer:              LiveServerSpec{Enabled: m.LiveServer.Enabled, Addr: m.LiveServer.Addr},
	}
	spec.ResourceMonitoring.Enabled = m.ResourceMonitoring.Enabled
	interval := time.Second
	if m.ResourceMonitoring.SampleInterval != "" {
		d, err := ParseDuration(m.ResourceMonitoring.SampleInterval)
		if err != nil {
			return MetricsSpec{}, err
		}
		interval = d
	}
	spec.ResourceMonitoring.SampleInterval = interval
	return spec, nil
}

func buildCircuitBreaker(c CircuitBreakerDoc) (CircuitBreakerSpec, error) {
	if !c.Enabled {
		return CircuitBreakerSpec{Enabled: false}, nil
	}
	if c.ErrorThreshold < 0 || c.ErrorThreshold > 1 {
		return CircuitBreakerSpec{}, fmt.Errorf("%w: circuitBreaker.errorThreshold must be in [0,1]", ErrInvalid)
	}
	if c.WindowSize < 1 {
		return CircuitBreakerSpec{}, fmt.Errorf("%w: circuitBreaker.windowSize must be >= 1", ErrInvalid)
	}
	return CircuitBreakerSpec{Enabled: true, ErrorThreshold: c.ErrorThreshold, WindowSize: c.WindowSize}, nil
}
