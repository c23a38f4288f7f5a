package metrics

import (
	"sort"
	"sync"
)

// maxErrorSamples bounds the per-status-code and per-exception-kind sample
// deques spec §3/§4.G mandate.
const maxErrorSamples = 100

// reportedSamples is how many of each bucket's most-recent samples are
// returned by Report.
const reportedSamples = 3

// ResponseSample is one captured error response body, recorded only for
// status codes >= 400.
type ResponseSample struct {
	TimestampMs int64
	StatusCode  int
	Body        string
}

// ExceptionSample is one captured transport-level/exception failure.
type ExceptionSample struct {
	TimestampMs int64
	Kind        string
	Message     string
	Stack       string
}

type bucket[T any] struct {
	count   int64
	samples []T // bounded ring, oldest first
}

func pushSample[T any](b *bucket[T], s T) {
	b.count++
	b.samples = append(b.samples, s)
	if len(b.samples) > maxErrorSamples {
		b.samples = b.samples[len(b.samples)-maxErrorSamples:]
	}
}

// ErrorAnalyzer tracks bounded samples and counts per status code (for
// response errors) and per exception kind (for transport/timeout errors).
type ErrorAnalyzer struct {
	mu         sync.Mutex
	byStatus   map[int]*bucket[ResponseSample]
	statusSeq  []int // insertion order, for tie-breaking
	byKind     map[string]*bucket[ExceptionSample]
	kindSeq    []string
}

func NewErrorAnalyzer() *ErrorAnalyzer {
	return &ErrorAnalyzer{
		byStatus: make(map[int]*bucket[ResponseSample]),
		byKind:   make(map[string]*bucket[ExceptionSample]),
	}
}

// RecordResponseError samples a response body for a status code >= 400;
// lower codes are ignored since they aren't errors.
func (a *ErrorAnalyzer) RecordResponseError(timestampMs int64, status int, body string) {
	if status < 400 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.byStatus[status]
	if !ok {
		b = &bucket[ResponseSample]{}
		a.byStatus[status] = b
		a.statusSeq = append(a.statusSeq, status)
	}
	pushSample(b, ResponseSample{TimestampMs: timestampMs, StatusCode: status, Body: body})
}

// RecordException samples a non-HTTP failure (timeout, transport error) by
// exception kind.
func (a *ErrorAnalyzer) RecordException(timestampMs int64, kind, message, stack string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.byKind[kind]
	if !ok {
		b = &bucket[ExceptionSample]{}
		a.byKind[kind] = b
		a.kindSeq = append(a.kindSeq, kind)
	}
	pushSample(b, ExceptionSample{TimestampMs: timestampMs, Kind: kind, Message: message, Stack: stack})
}

// StatusReport is one status code's entry in a Report.
type StatusReport struct {
	StatusCode int
	Count      int64
	Recent     []ResponseSample // last reportedSamples, by timestamp desc
}

// KindReport is one exception kind's entry in a Report.
type KindReport struct {
	Kind   string
	Count  int64
	Recent []ExceptionSample
}

// Report returns the top-N status codes and exception kinds by count
// descending, ties broken by insertion order, each with their most recent
// samples (timestamp desc).
func (a *ErrorAnalyzer) Report(topN int) ([]StatusReport, []KindReport) {
	a.mu.Lock()
	defer a.mu.Unlock()

	statuses := make([]StatusReport, 0, len(a.byStatus))
	for _, code := range a.statusSeq {
		b := a.byStatus[code]
		statuses = append(statuses, StatusReport{
			StatusCode: code,
			Count:      b.count,
			Recent:     recentResponses(b.samples),
		})
	}
	sort.SliceStable(statuses, func(i, j int) bool { return statuses[i].Count > statuses[j].Count })
	if topN > 0 && len(statuses) > topN {
		statuses = statuses[:topN]
	}

	kinds := make([]KindReport, 0, len(a.byKind))
	for _, kind := range a.kindSeq {
		b := a.byKind[kind]
		kinds = append(kinds, KindReport{
			Kind:   kind,
			Count:  b.count,
			Recent: recentExceptions(b.samples),
		})
	}
	sort.SliceStable(kinds, func(i, j int) bool { return kinds[i].Count > kinds[j].Count })
	if topN > 0 && len(kinds) > topN {
		kinds = kinds[:topN]
	}

	return statuses, kinds
}

func recentResponses(samples []ResponseSample) []ResponseSample {
	n := reportedSamples
	if len(samples) < n {
		n = len(samples)
	}
	out := make([]ResponseSample, n)
	for i := 0; i < n; i++ {
		out[i] = samples[len(samples)-1-i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimestampMs > out[j].TimestampMs })
	return out
}

func recentExceptions(samples []ExceptionSample) []ExceptionSample {
	n := reportedSamples
	if len(samples) < n {
		n = len(samples)
	}
	out := make([]ExceptionSample, n)
	for i := 0; i < n; i++ {
		out[i] = samples[len(samples)-1-i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimestampMs > out[j].TimestampMs })
	return out
}

func (a *ErrorAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byStatus = make(map[int]*bucket[ResponseSample])
	a.statusSeq = nil
	a.byKind = make(map[string]*bucket[ExceptionSample])
	a.kindSeq = nil
}
