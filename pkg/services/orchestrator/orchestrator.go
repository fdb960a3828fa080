package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/rs/zerolog"
)

var errPanicked = errors.New("analysis client panicked")

// Client is the analysis collaborator.
type Client interface {
	Analyze(ctx context.Context, query domain.RouteQuery) (*domain.Analysis, error)
}

// State is a copy of the orchestrator slots.
type State struct {
	InFlight bool
	Dataset  []domain.DataPoint
	// Insights is nil until the first settlement.
	Insights domain.Insights
}

// Orchestrator runs submissions against the analysis client and owns the
// dataset and insights slots they settle into.
type Orchestrator struct {
	client   Client
	lifetime context.Context
	onChange func()

	mu       sync.Mutex
	closed   bool
	inFlight bool
	dataset  []domain.DataPoint
	insights domain.Insights

	wg sync.WaitGroup
}

type Option func(*Orchestrator)

// WithOnChange registers a callback run after every visible state change.
// It is never called once the lifetime has ended.
func WithOnChange(fn func()) Option {
	return func(o *Orchestrator) {
		o.onChange = fn
	}
}

// New binds the orchestrator to lifetime: settlements arriving after it is
// done leave the slots untouched.
func New(lifetime context.Context, client Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		lifetime: lifetime,
		onChange: func() {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// settlement is what a submission writes back; applied is false when the
// client never returned. A failed submission keeps the current dataset.
type settlement struct {
	applied     bool
	keepDataset bool
	dataset     []domain.DataPoint
	insights    domain.Insights
}

// Submit sends query and blocks until it settles. It is not guarded
// against concurrent calls; the last settlement wins.
func (o *Orchestrator) Submit(ctx context.Context, query domain.RouteQuery) {
	o.begin()
	o.run(ctx, query)
}

// TryStart is the trigger path: it refuses while a submission is in flight,
// otherwise marks one in flight and runs it in the background.
func (o *Orchestrator) TryStart(ctx context.Context, query domain.RouteQuery) bool {
	o.mu.Lock()
	if o.closed || o.inFlight || o.lifetime.Err() != nil {
		o.mu.Unlock()
		return false
	}
	o.inFlight = true
	o.wg.Add(1)
	o.mu.Unlock()
	o.notify()

	go func() {
		defer o.wg.Done()
		o.run(ctx, query)
	}()
	return true
}

// Wait blocks until every submission started with TryStart has settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close refuses further TryStart calls and waits for the running one.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.wg.Wait()
}

// Busy reports whether a submission is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{
		InFlight: o.inFlight,
		Dataset:  slices.Clone(o.dataset),
		Insights: o.insights,
	}
}

func (o *Orchestrator) begin() {
	o.mu.Lock()
	o.inFlight = true
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) run(ctx context.Context, query domain.RouteQuery) {
	logger := zerolog.Ctx(ctx)

	var outcome settlement
	defer func() {
		if p := recover(); p != nil {
			logger.Error().
				Interface("panic", p).
				Str("origin", query.Origin).
				Str("destination", query.Destination).
				Msg("analysis client panicked")

			outcome = settlement{
				applied:     true,
				keepDataset: true,
				insights:    domain.Failure{Message: analysis.Message(fmt.Errorf("%w: %v", errPanicked, p))},
			}
		}
		o.settle(outcome)
	}()

	result, err := o.client.Analyze(ctx, query)
	if err == nil && result == nil {
		err = analysis.ErrMalformed
	}
	if err != nil {
		logger.Error().
			Err(err).
			Str("origin", query.Origin).
			Str("destination", query.Destination).
			Msg("analysis request failed")

		outcome = settlement{
			applied:     true,
			keepDataset: true,
			insights:    domain.Failure{Message: analysis.Message(err)},
		}
		return
	}

	outcome = settlement{
		applied:  true,
		dataset:  slices.Clone(result.Data),
		insights: result.Insights,
	}
}

// settle writes the outcome and clears the in-flight flag in one step.
func (o *Orchestrator) settle(outcome settlement) {
	alive := o.lifetime.Err() == nil

	o.mu.Lock()
	o.inFlight = false
	if alive && outcome.applied {
		if !outcome.keepDataset {
			o.dataset = outcome.dataset
		}
		o.insights = outcome.insights
	}
	o.mu.Unlock()

	o.notify()
}

func (o *Orchestrator) notify() {
	if o.lifetime.Err() != nil {
		return
	}
	o.onChange()
}
