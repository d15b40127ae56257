package analysisWorkflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/utils"
)

type State int

const (
	Idle State = iota
	Validating
	Pending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type AnalyticsApi interface {
	Analyze(ctx context.Context, rq model.AnalysisRequest) (model.AnalysisResult, error)
}

// Snapshot is a read-only view of the workflow. Request echoes the body of the
// latest submission; Result is the last response accepted for it.
type Snapshot struct {
	State   State
	ID      uint64
	Request *model.AnalysisRequest
	Result  *model.AnalysisResult
	Err     error
}

func (s Snapshot) Loading() bool {
	return s.State == Pending
}

type AnalysisWorkflow struct {
	api AnalyticsApi

	mu        sync.Mutex
	state     State
	seq       uint64
	request   *model.AnalysisRequest
	result    *model.AnalysisResult
	err       error
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []func(Snapshot)

	inFlight sync.WaitGroup
}

func New(api AnalyticsApi) *AnalysisWorkflow {
	done := make(chan struct{})
	close(done)
	return &AnalysisWorkflow{api: api, done: done}
}

// Subscribe registers fn to be called with a fresh snapshot after every transition.
func (w *AnalysisWorkflow) Subscribe(fn func(Snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

func (w *AnalysisWorkflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Submit validates sel and, if it is complete, issues the request in the
// background and returns its id. A validation error is returned without any
// call and the workflow stays as it was. A newer submission supersedes any
// request still in flight: the older one is cancelled and its response dropped.
func (w *AnalysisWorkflow) Submit(ctx context.Context, sel model.AnalysisSelection) (uint64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalysisWorkflow.Submit"

	slog.Debug("Submit start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", sel.Symbol))

	w.mu.Lock()
	prev := w.state
	// a request in flight stays visible as Pending while the next one is checked
	if prev != Pending {
		w.state = Validating
	}
	w.mu.Unlock()

	rq, err := requestBuilder.Build(sel)
	if err != nil {
		w.mu.Lock()
		if w.state == Validating {
			w.state = prev
		}
		w.mu.Unlock()
		slog.Info("selection is not complete, request not sent", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	reqCtx, cancel := context.WithCancel(utils.CreateCtxWithRqID(ctx))

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.seq++
	id := w.seq
	w.state = Pending
	w.request = &rq
	w.result = nil
	w.err = nil
	w.cancel = cancel
	done := make(chan struct{})
	w.done = done
	snap := w.snapshotLocked()
	listeners := w.listenersLocked()
	w.mu.Unlock()

	notify(listeners, snap)

	w.inFlight.Add(1)
	go w.run(reqCtx, id, rq, done)

	slog.Debug("Submit finished", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("id", id))

	return id, nil
}

func (w *AnalysisWorkflow) run(ctx context.Context, id uint64, rq model.AnalysisRequest, done chan struct{}) {
	defer w.inFlight.Done()

	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalysisWorkflow.run"

	res, err := w.api.Analyze(ctx, rq)

	w.mu.Lock()
	if id != w.seq {
		w.mu.Unlock()
		close(done)
		slog.Debug("dropping stale response", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("id", id))
		return
	}

	w.cancel = nil
	if err != nil {
		w.state = Failed
		w.err = err
		slog.Error("got error from api.Analyze", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", rq.Symbol), slog.String("err", err.Error()))
	} else {
		w.state = Succeeded
		w.result = &res
		slog.Info("analysis received", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", rq.Symbol), slog.Bool("plot", res.HasPlot()), slog.Bool("var", res.HasVar()))
	}
	snap := w.snapshotLocked()
	listeners := w.listenersLocked()
	w.mu.Unlock()

	close(done)
	notify(listeners, snap)
}

// Wait blocks until the latest submission has settled or ctx is done.
func (w *AnalysisWorkflow) Wait(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()

	select {
	case <-done:
		return w.Snapshot(), nil
	case <-ctx.Done():
		return w.Snapshot(), ctx.Err()
	}
}

// SelectionChanged returns a settled workflow to Idle. The last result stays
// on display until the next submission clears it.
func (w *AnalysisWorkflow) SelectionChanged() {
	w.mu.Lock()
	if w.state == Pending || w.state == Idle {
		w.mu.Unlock()
		return
	}
	w.state = Idle
	w.err = nil
	snap := w.snapshotLocked()
	listeners := w.listenersLocked()
	w.mu.Unlock()

	notify(listeners, snap)
}

// Close cancels the request in flight and waits for its goroutine to exit.
func (w *AnalysisWorkflow) Close() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.inFlight.Wait()
}

func (w *AnalysisWorkflow) snapshotLocked() Snapshot {
	snap := Snapshot{State: w.state, ID: w.seq, Err: w.err}
	if w.request != nil {
		rq := *w.request
		snap.Request = &rq
	}
	if w.result != nil {
		res := *w.result
		snap.Result = &res
	}
	return snap
}

func (w *AnalysisWorkflow) listenersLocked() []func(Snapshot) {
	listeners := make([]func(Snapshot), len(w.listeners))
	copy(listeners, w.listeners)
	return listeners
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
