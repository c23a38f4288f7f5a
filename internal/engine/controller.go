// Package engine implements the execution controller: the state machine
// that orchestrates the traffic profile, rate regulator, worker pool,
// circuit breaker, and metrics fabric for one load test run.
package engine

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"loadgen/internal/breaker"
	"loadgen/internal/config"
	"loadgen/internal/metrics"
	"loadgen/internal/params"
	"loadgen/internal/ratelimit"
	"loadgen/internal/result"
	"loadgen/internal/template"
	"loadgen/internal/util"
	"loadgen/internal/validator"
)

// State is the controller's lifecycle position.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// ErrAlreadyRun is the fatal kind raised when Execute is called a second
// time on the same Controller; the single-run guard's CAS failure.
var ErrAlreadyRun = errors.New("controller has already executed a run")

// progressInterval is how often the rate-update scheduler emits a progress
// log line, per spec §4.H step 2.
const progressInterval = 10 * time.Second

// submissionSleep is the deliberate 1ms inter-submission sleep; the rate
// regulator provides the real pacing, this just avoids a hot spin.
const submissionSleep = time.Millisecond

// Controller orchestrates one load test run end to end. It is single-use:
// Execute may only be called once.
type Controller struct {
	spec   *config.TestSpec
	logger *zap.Logger

	regulator *ratelimit.Regulator
	breakerB  *breaker.Breaker // nil when circuit breaker disabled
	generator *template.Generator
	validatorV *validator.Validator

	counters        metrics.Counters
	statusCodes     *metrics.StatusCodeCounts
	tpsSampler      *metrics.TpsSampler
	responseHist    *metrics.LatencyHistogram
	waitHist        *metrics.LatencyHistogram
	errorAnalyzer   *metrics.ErrorAnalyzer
	resourceMonitor *metrics.ResourceMonitor

	httpClient *http.Client
	tracing    *tracing

	state    atomic.Int32
	requestID atomic.Int64

	startTime time.Time
	stopOnce  chan struct{}
}

// Option customizes a Controller before Execute runs.
type Option func(*Controller)

// WithValidator attaches an optional response Validator.
func WithValidator(v *validator.Validator) Option {
	return func(c *Controller) { c.validatorV = v }
}

// New builds a Controller from a validated TestSpec. sources must contain
// one live params.Source per name referenced by spec.ParameterSpecs.
func New(spec *config.TestSpec, sources map[string]params.Source, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var breakerB *breaker.Breaker
	if spec.CircuitBreaker.Enabled {
		b, err := breaker.New(spec.CircuitBreaker.ErrorThreshold, spec.CircuitBreaker.WindowSize)
		if err != nil {
			return nil, err
		}
		breakerB = b
	}

	rng := util.NewRand(spec.Name, spec.Seed)
	generator := template.NewGenerator(spec.Templates, sources, rng, logger)

	var resourceMonitor *metrics.ResourceMonitor
	if spec.Metrics.ResourceMonitoring.Enabled {
		rm, err := metrics.NewResourceMonitor(spec.Metrics.ResourceMonitoring.SampleInterval, logger)
		if err != nil {
			return nil, err
		}
		resourceMonitor = rm
	}

	c := &Controller{
		spec:            spec,
		logger:          logger,
		regulator:       ratelimit.New(spec.Profile.TpsAt(0, spec.TestDuration.Milliseconds())),
		breakerB:        breakerB,
		generator:       generator,
		statusCodes:     metrics.NewStatusCodeCounts(),
		tpsSampler:      metrics.NewTpsSampler(),
		responseHist:    metrics.NewLatencyHistogram(),
		waitHist:        metrics.NewLatencyHistogram(),
		errorAnalyzer:   metrics.NewErrorAnalyzer(),
		resourceMonitor: resourceMonitor,
		httpClient:      newHTTPClient(spec.ThreadPool.MaxSize),
		tracing:         newTracing(),
		stopOnce:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State reports the controller's current lifecycle position.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Stop requests cooperative shutdown from another goroutine. If the
// controller isn't Running, Stop is a no-op; repeated calls are safe.
func (c *Controller) Stop() {
	if c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		close(c.stopOnce)
	}
}

// Execute runs the test to completion (deadline, breaker trip, or external
// Stop) and returns the assembled result Snapshot. It enforces the
// single-run guard: a second call always fails with ErrAlreadyRun.
func (c *Controller) Execute(ctx context.Context) (*result.Snapshot, error) {
	if !c.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return nil, ErrAlreadyRun
	}

	c.startTime = time.Now()
	totalMs := c.spec.TestDuration.Milliseconds()
	deadline := c.startTime.Add(c.spec.TestDuration)

	// The scheduler's lifetime and each request's lifetime are independent:
	// the scheduler stops the instant submission ends, but in-flight HTTP
	// calls get their own 30s drain budget and are only force-interrupted
	// if that budget actually elapses (spec §4.H/§5 "after that workers are
	// interrupted" — not before).
	schedulerCtx, cancelScheduler := context.WithCancel(ctx)
	defer cancelScheduler()
	requestCtx, cancelRequests := context.WithCancel(ctx)
	defer cancelRequests()

	schedulerDone := c.startScheduler(schedulerCtx, totalMs)
	if c.resourceMonitor != nil {
		c.resourceMonitor.Start()
	}

	workerPool := newPool(c.spec.ThreadPool.CoreSize, c.spec.ThreadPool.MaxSize, c.spec.ThreadPool.QueueSize)

	c.runSubmissionLoop(requestCtx, workerPool, deadline)

	cancelScheduler() // stop the rate-update ticker promptly once submission ends
	<-schedulerDone

	poolDone := workerPool.Shutdown()
	select {
	case <-poolDone:
	case <-time.After(30 * time.Second):
		c.logger.Warn("worker pool did not drain within grace period, interrupting in-flight requests")
		cancelRequests()
		<-poolDone
	}

	if c.resourceMonitor != nil {
		c.resourceMonitor.Stop()
	}

	c.responseHist.UpdateSnapshot()
	c.waitHist.UpdateSnapshot()

	endTime := time.Now()
	snap := result.Build(result.Params{
		Name:            c.spec.Name,
		StartTime:       c.startTime,
		EndTime:         endTime,
		Counters:        &c.counters,
		StatusCodes:     c.statusCodes,
		TpsSampler:      c.tpsSampler,
		ResponseTime:    c.responseHist,
		RateLimiterWait: c.waitHist,
		ErrorAnalyzer:   c.errorAnalyzer,
		ResourceMonitor: c.resourceMonitor,
		MaxTps:          c.spec.Profile.MaxTps(),
		TopN:            10,
	})

	c.state.Store(int32(StateStopped))
	return &snap, nil
}

// LiveSnapshot assembles a best-effort result.Snapshot from the
// accumulators as they stand right now, without waiting for the run to
// finish. Safe to call concurrently with Execute; intended for the live
// status server, which polls it at request time. Histograms reflect only
// whatever has already been folded in by their last UpdateSnapshot.
func (c *Controller) LiveSnapshot() result.Snapshot {
	start := c.startTime
	if start.IsZero() {
		start = time.Now()
	}
	return result.Build(result.Params{
		Name:            c.spec.Name,
		StartTime:       start,
		EndTime:         time.Now(),
		Counters:        &c.counters,
		StatusCodes:     c.statusCodes,
		TpsSampler:      c.tpsSampler,
		ResponseTime:    c.responseHist,
		RateLimiterWait: c.waitHist,
		ErrorAnalyzer:   c.errorAnalyzer,
		ResourceMonitor: c.resourceMonitor,
		MaxTps:          c.spec.Profile.MaxTps(),
		TopN:            10,
	})
}

// startScheduler runs the 1Hz rate-update loop: recompute the target TPS
// from the traffic profile and push it into the regulator, take the
// per-second TPS sample, and log progress every progressInterval. Errors are logged and swallowed so a
// single bad tick never crashes the run.
func (c *Controller) startScheduler(ctx context.Context, totalMs int64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		var lastProgress time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				func() {
					defer func() {
						if r := recover(); r != nil {
							c.logger.Error("rate-update scheduler tick panicked", zap.Any("recover", r))
						}
					}()
					elapsed := time.Since(c.startTime)
					target := c.spec.Profile.TpsAt(elapsed.Milliseconds(), totalMs)
					c.regulator.SetRate(target)
					c.tpsSampler.UpdateTps(time.Now().UnixMilli())

					if time.Since(lastProgress) >= progressInterval {
						lastProgress = time.Now()
						c.logProgress(elapsed, totalMs, target)
					}
				}()
			}
		}
	}()
	return done
}

func (c *Controller) logProgress(elapsed time.Duration, totalMs int64, targetTps float64) {
	total := c.counters.Total()
	var successRate float64
	if total > 0 {
		successRate = float64(c.counters.Success()) / float64(total)
	}
	var pct float64
	if totalMs > 0 {
		pct = 100 * float64(elapsed.Milliseconds()) / float64(totalMs)
	}
	c.logger.Info("load test progress",
		zap.Float64("elapsedPct", pct),
		zap.Float64("targetTps", targetTps),
		zap.Float64("actualTps", c.tpsSampler.CurrentTps()),
		zap.Float64("successRate", successRate),
	)
}

// runSubmissionLoop is the dispatcher: while the deadline hasn't passed and
// the breaker (if any) is closed, assign a fresh requestId and submit one
// unit of work to the pool.
func (c *Controller) runSubmissionLoop(ctx context.Context, p *pool, deadline time.Time) {
	for {
		select {
		case <-c.stopOnce:
			return
		default:
		}
		if time.Now().After(deadline) {
			return
		}
		if c.breakerB != nil && !c.breakerB.AllowRequest() {
			c.logger.Info("circuit breaker open, halting submission")
			return
		}

		id := c.requestID.Add(1) - 1
		elapsedMs := time.Since(c.startTime).Milliseconds()
		p.Submit(func() {
			c.runOne(ctx, id, elapsedMs)
		})

		time.Sleep(submissionSleep)
	}
}

// runOne is the per-request worker lifecycle, spec §4.I.
func (c *Controller) runOne(ctx context.Context, requestID, elapsedMs int64) {
	defer c.tpsSampler.RecordRequest() // every terminal path counts exactly once

	wait, err := c.regulator.Acquire(ctx)
	c.waitHist.RecordValue(wait.Milliseconds())
	if err != nil {
		return // context cancelled (shutdown in progress)
	}

	if c.breakerB != nil && !c.breakerB.AllowRequest() {
		c.counters.IncrSkipped()
		return
	}

	timestampMs := time.Now().UnixMilli()
	req, templateName, err := c.generator.Generate(ctx, requestID, timestampMs, elapsedMs)
	if err != nil {
		c.counters.IncrSkipped()
		return
	}

	c.counters.IncrTotal()
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req = req.WithContext(reqCtx)

	spanCtx, endSpan := c.tracing.StartRequestSpan(reqCtx, templateName)
	req = req.WithContext(spanCtx)

	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)

	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			c.counters.IncrTimeout()
			c.counters.IncrFailure()
			c.responseHist.RecordValue(requestTimeout.Milliseconds())
			c.errorAnalyzer.RecordException(timestampMs, "timeout", err.Error(), "")
			if c.breakerB != nil {
				c.breakerB.RecordResult(false)
			}
			endSpan(0, requestTimeout.Milliseconds())
			return
		}
		c.counters.IncrFailure()
		c.errorAnalyzer.RecordException(timestampMs, "transportError", err.Error(), "")
		if c.breakerB != nil {
			c.breakerB.RecordResult(false)
		}
		endSpan(0, latency.Milliseconds())
		return
	}
	defer resp.Body.Close()

	body, _ := validatorReadBody(resp)
	c.responseHist.RecordValue(latency.Milliseconds())
	c.statusCodes.Increment(resp.StatusCode)
	endSpan(resp.StatusCode, latency.Milliseconds())

	isSuccess := validator.DefaultSuccess(resp.StatusCode)
	if c.validatorV != nil {
		ok, _, _ := c.validatorV.Validate(resp.StatusCode, resp.Header, body)
		isSuccess = isSuccess && ok
	}

	if isSuccess {
		c.counters.IncrSuccess()
	} else {
		c.counters.IncrFailure()
		if resp.StatusCode >= 400 {
			c.errorAnalyzer.RecordResponseError(timestampMs, resp.StatusCode, string(body))
		}
	}
	if c.breakerB != nil {
		c.breakerB.RecordResult(isSuccess)
	}
}

func validatorReadBody(resp *http.Response) ([]byte, error) {
	return validator.ReadResponseBody(resp)
}
