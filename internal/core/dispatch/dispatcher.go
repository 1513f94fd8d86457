// Package dispatch fans persona generation requests out to backends and
// collects one result per requested call, in request order, no matter how
// individual calls fail.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

// Generator is the generation collaborator: one call produces one result for
// one backend. Implementations may fail by returning an error or a result
// with Success=false; the dispatcher tolerates both, plus panics.
type Generator interface {
	Generate(ctx context.Context, backend string, source map[string]interface{}, samples int) (model.GenerationResult, error)
}

// Dispatcher issues generation calls. It never returns an error: failures
// become failure results in the corresponding slot.
type Dispatcher struct {
	gen     Generator
	timeout time.Duration
	logger  logging.Logger
}

// New builds a Dispatcher. timeout bounds each individual call; 0 disables
// the per-call deadline.
func New(gen Generator, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		gen:     gen,
		timeout: timeout,
		logger:  logging.New("dispatch"),
	}
}

// Parallel issues one concurrent call per backend. The returned slice has
// exactly len(backends) entries and entry i belongs to backends[i],
// regardless of completion order.
func (d *Dispatcher) Parallel(ctx context.Context, backends []string, source map[string]interface{}, samples int) []model.GenerationResult {
	results := make([]model.GenerationResult, len(backends))
	var wg sync.WaitGroup
	for i, backend := range backends {
		wg.Add(1)
		go func(slot int, backend string) {
			defer wg.Done()
			results[slot] = d.call(ctx, backend, source, samples)
		}(i, backend)
	}
	wg.Wait()
	return results
}

// Sequential issues the calls one at a time, in list order. Failure handling
// matches Parallel: a failed call fills its slot and the rest proceed.
func (d *Dispatcher) Sequential(ctx context.Context, backends []string, source map[string]interface{}, samples int) []model.GenerationResult {
	results := make([]model.GenerationResult, len(backends))
	for i, backend := range backends {
		results[i] = d.call(ctx, backend, source, samples)
	}
	return results
}

// SelfConsistency resamples a single backend: samples independent calls of
// one output each, issued concurrently.
func (d *Dispatcher) SelfConsistency(ctx context.Context, backend string, source map[string]interface{}, samples int) []model.GenerationResult {
	if samples < 1 {
		samples = 1
	}
	backends := make([]string, samples)
	for i := range backends {
		backends[i] = backend
	}
	return d.Parallel(ctx, backends, source, 1)
}

// call runs one generation call and converts every failure mode (returned
// error, Success=false, panic, timeout) into a failure result. A nominally
// successful result with no outputs is also treated as a failure so that
// every successful result carries at least one candidate.
func (d *Dispatcher) call(ctx context.Context, backend string, source map[string]interface{}, samples int) (result model.GenerationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("generator panicked for backend %s: %v", backend, r)
			result = model.FailedResult(backend, fmt.Sprintf("generator panicked: %v", r), time.Since(start))
		}
	}()

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := d.gen.Generate(callCtx, backend, source, samples)
	if err != nil {
		d.logger.Warnf("generation failed for backend %s: %v", backend, err)
		return model.FailedResult(backend, err.Error(), time.Since(start))
	}

	res.Backend = backend
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}
	if res.Success && len(res.Outputs) == 0 {
		return model.FailedResult(backend, "backend returned no candidate outputs", res.Latency)
	}
	if !res.Success && res.Error == "" {
		res.Error = "generation failed"
	}
	return res
}

// Candidates pools the outputs of successful results, preserving result
// order and per-result output order.
func Candidates(results []model.GenerationResult) []model.CandidateOutput {
	var pool []model.CandidateOutput
	for _, res := range results {
		if res.Success {
			pool = append(pool, res.Outputs...)
		}
	}
	return pool
}

// AllFailed reports whether no call produced output.
func AllFailed(results []model.GenerationResult) bool {
	for _, res := range results {
		if res.Success {
			return false
		}
	}
	return len(results) > 0
}

// CombinedError merges the errors of failed results into one, for logging.
// Returns nil when nothing failed.
func CombinedError(results []model.GenerationResult) error {
	var errs []error
	for _, res := range results {
		if !res.Success {
			errs = append(errs, fmt.Errorf("%s: %s", res.Backend, res.Error))
		}
	}
	return multierr.Combine(errs...)
}
