package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
	"github.com/ridgeline-data/ascent.report/internal/groundtruth"
	"github.com/ridgeline-data/ascent.report/internal/monitoring"
)

// SweepStatus represents the current state of a sweep run.
type SweepStatus string

const (
	SweepStatusIdle     SweepStatus = "idle"
	SweepStatusRunning  SweepStatus = "running"
	SweepStatusComplete SweepStatus = "complete"
	SweepStatusError    SweepStatus = "error"
)

// progressLogEvery throttles evaluation progress logging.
const progressLogEvery = 250

// SweepRequest defines the parameters for starting a sweep.
type SweepRequest struct {
	// Base is the configuration every sweep dimension modifies.
	// Nil means elevation.DefaultParams.
	Base *elevation.Params `json:"base,omitempty"`

	// Params are the dimensions to sweep. Empty sweeps just the base
	// configuration.
	Params []SweepParam `json:"params,omitempty"`

	// Workers bounds the evaluation fan-out. Zero or negative uses one
	// worker per CPU.
	Workers int `json:"workers,omitempty"`

	// Weights override the default composite scoring weights.
	Weights *ObjectiveWeights `json:"weights,omitempty"`

	// KeepEvaluations retains every per-track EvaluationResult on the
	// ranked output. Off by default: a large grid times a large corpus
	// makes the state enormous.
	KeepEvaluations bool `json:"keep_evaluations,omitempty"`
}

// SweepState holds the current state and results of a sweep.
type SweepState struct {
	Status               SweepStatus    `json:"status"`
	StartedAt            *time.Time     `json:"started_at,omitempty"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	TotalCombos          int            `json:"total_combos"`
	TotalEvaluations     int            `json:"total_evaluations"`
	CompletedEvaluations int            `json:"completed_evaluations"`
	Results              []ScoredResult `json:"results"`
	Error                string         `json:"error,omitempty"`
	Warnings             []string       `json:"warnings,omitempty"`
	Request              *SweepRequest  `json:"request,omitempty"`
}

// Progress counts completed evaluations for one sweep invocation. It is
// scoped to a single run and shared only between that run's workers; it is
// never package-global state.
type Progress struct {
	completed atomic.Int64
	total     int64
}

// NewProgress creates a counter expecting the given number of evaluations.
func NewProgress(total int) *Progress {
	return &Progress{total: int64(total)}
}

// Increment records one completed evaluation and returns the new count.
func (p *Progress) Increment() int64 { return p.completed.Add(1) }

// Completed returns the number of completed evaluations.
func (p *Progress) Completed() int64 { return p.completed.Load() }

// Total returns the expected number of evaluations.
func (p *Progress) Total() int64 { return p.total }

// Runner orchestrates parameter sweeps over a track corpus.
type Runner struct {
	truth  groundtruth.Lookup
	mu     sync.RWMutex
	state  SweepState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a sweep runner. truth may be nil when no ground truth
// is available; accuracy scoring is then skipped.
func NewRunner(truth groundtruth.Lookup) *Runner {
	return &Runner{
		truth: truth,
		state: SweepState{Status: SweepStatusIdle},
	}
}

// GetSweepState returns a copy of the current sweep state.
func (r *Runner) GetSweepState() SweepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state := r.state
	results := make([]ScoredResult, len(r.state.Results))
	copy(results, r.state.Results)
	state.Results = results
	warnings := make([]string, len(r.state.Warnings))
	copy(warnings, r.state.Warnings)
	state.Warnings = warnings
	return state
}

// Start begins a new sweep run in the background. The corpus and ground
// truth are read-only for the duration of the run. Returns an error if a
// sweep is already in progress or the request is invalid.
func (r *Runner) Start(ctx context.Context, req SweepRequest, tracks []Track) error {
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks to evaluate")
	}

	base := elevation.DefaultParams()
	if req.Base != nil {
		base = *req.Base
	}
	combos, err := BuildCombos(base, req.Params)
	if err != nil {
		return fmt.Errorf("building combinations: %w", err)
	}

	r.mu.Lock()
	if r.state.Status == SweepStatusRunning {
		r.mu.Unlock()
		return fmt.Errorf("sweep already in progress")
	}

	now := time.Now()
	r.state = SweepState{
		Status:           SweepStatusRunning,
		StartedAt:        &now,
		TotalCombos:      len(combos),
		TotalEvaluations: len(combos) * len(tracks),
		Request:          &req,
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.run(sweepCtx, req, combos, tracks)

	return nil
}

// Stop cancels a running sweep. In-flight evaluations finish; the run stops
// at the next task boundary.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Done returns a channel closed when the current run finishes. Returns nil
// if no run was started.
func (r *Runner) Done() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// addWarning appends a warning message to the sweep state.
func (r *Runner) addWarning(msg string) {
	r.mu.Lock()
	r.state.Warnings = append(r.state.Warnings, msg)
	r.mu.Unlock()
}

// run executes the sweep in a background goroutine: a worker pool fans out
// over every (configuration, track) pair, then an aggregation barrier folds
// the evaluations into ranked per-configuration results.
func (r *Runner) run(ctx context.Context, req SweepRequest, combos []Combo, tracks []Track) {
	defer close(r.done)

	monitoring.Logf("[sweep] starting: %d combinations x %d tracks", len(combos), len(tracks))

	evals, interrupted := r.evaluateAll(ctx, req, combos, tracks)
	if interrupted {
		r.mu.Lock()
		r.state.Status = SweepStatusError
		r.state.Error = fmt.Sprintf("sweep stopped after %d/%d evaluations: %v",
			r.state.CompletedEvaluations, r.state.TotalEvaluations, ctx.Err())
		now := time.Now()
		r.state.CompletedAt = &now
		r.mu.Unlock()
		monitoring.Logf("[sweep] stopped: %v", ctx.Err())
		return
	}

	results := make([]ComboResult, len(combos))
	for i, combo := range combos {
		cr := computeComboResult(combo, evals[i])
		for _, ev := range evals[i] {
			if ev.Diagnostics.ResampleSkipped {
				r.addWarning(fmt.Sprintf("combo %d track %s: resample budget exceeded, processed raw trace",
					combo.Index, ev.Track))
			}
			if ev.Err != "" {
				r.addWarning(fmt.Sprintf("combo %d track %s: %s", combo.Index, ev.Track, ev.Err))
			}
		}
		if !req.KeepEvaluations {
			cr.Evaluations = nil
		}
		results[i] = cr
	}

	weights := DefaultObjectiveWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	ranked := RankResults(results, weights)

	r.mu.Lock()
	r.state.Status = SweepStatusComplete
	r.state.Results = ranked
	now := time.Now()
	r.state.CompletedAt = &now
	r.mu.Unlock()

	monitoring.Logf("[sweep] complete: %d combinations evaluated", len(combos))
}

// evaluateAll runs the parallel phase. Each (combo, track) cell is written
// by exactly one worker; the corpus and ground truth are read-only. Returns
// interrupted=true when the context was cancelled before all work was fed.
func (r *Runner) evaluateAll(ctx context.Context, req SweepRequest, combos []Combo, tracks []Track) ([][]EvaluationResult, bool) {
	evaluator := Evaluator{Truth: r.truth}
	progress := NewProgress(len(combos) * len(tracks))

	evals := make([][]EvaluationResult, len(combos))
	for i := range evals {
		evals[i] = make([]EvaluationResult, len(tracks))
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos)*len(tracks) {
		workers = len(combos) * len(tracks)
	}

	type workItem struct {
		comboIdx int
		trackIdx int
	}
	jobs := make(chan workItem)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				evals[item.comboIdx][item.trackIdx] = evaluator.Evaluate(
					combos[item.comboIdx].Params, tracks[item.trackIdx])

				done := progress.Increment()
				r.mu.Lock()
				r.state.CompletedEvaluations = int(done)
				r.mu.Unlock()
				if done%progressLogEvery == 0 {
					monitoring.Logf("[sweep] %d/%d evaluations complete", done, progress.Total())
				}
			}
		}()
	}

	// Feed work, checking for cancellation between tasks. Cancellation is
	// best-effort: in-flight evaluations run to completion.
	interrupted := false
feed:
	for ci := range combos {
		for ti := range tracks {
			select {
			case <-ctx.Done():
				interrupted = true
				break feed
			case jobs <- workItem{comboIdx: ci, trackIdx: ti}:
			}
		}
	}
	close(jobs)

	// Aggregation barrier: no combo is summarised until every evaluation
	// for the round has finished.
	wg.Wait()

	return evals, interrupted
}
