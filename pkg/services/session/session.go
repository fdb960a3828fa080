package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/orchestrator"
	"github.com/de-tools/route-trends/pkg/store/form"
	"github.com/de-tools/route-trends/pkg/views/insights"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
	"github.com/rs/zerolog"
)

const (
	LabelIdle       = "Analyze Trends"
	LabelInProgress = "Analyzing..."
)

type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseSubmitting           Phase = "submitting"
	PhaseDisplayed            Phase = "displayed"
	PhaseDisplayedWithFailure Phase = "displayed_with_failure"
)

type TriggerControl struct {
	Label    string
	Disabled bool
}

// View is the read-only projection handed to front ends. Chart and
// Insights are nil when their component is not mounted.
type View struct {
	Phase    Phase
	Form     domain.RouteQuery
	Trigger  TriggerControl
	Dataset  []domain.DataPoint
	Chart    *timeseries.Chart
	Insights *insights.Panel
}

type Options struct {
	Chart  timeseries.Options
	Logger zerolog.Logger
}

// Session composes the form store, the orchestrator and both views for one
// user. It lives until Close.
type Session struct {
	id     string
	form   *form.Store
	orch   *orchestrator.Orchestrator
	chart  timeseries.Options
	logger zerolog.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	changes  chan struct{}
	closed   sync.Once
	lastSeen atomic.Int64
}

func New(id string, client orchestrator.Client, opts Options) *Session {
	lifetime, cancel := context.WithCancel(context.Background())
	logger := opts.Logger.With().Str("session", id).Logger()

	s := &Session{
		id:       id,
		form:     form.NewStore(),
		chart:    opts.Chart,
		logger:   logger,
		lifetime: logger.WithContext(lifetime),
		cancel:   cancel,
		changes:  make(chan struct{}, 1),
	}
	s.orch = orchestrator.New(lifetime, client, orchestrator.WithOnChange(s.notify))
	s.touch(time.Now())
	return s
}

// IdleView is what a front end shows before any session exists.
func IdleView() View {
	return View{
		Phase:   PhaseIdle,
		Trigger: TriggerControl{Label: LabelIdle},
	}
}

func (s *Session) ID() string {
	return s.id
}

// SetField applies a field edit. Unknown names are rejected.
func (s *Session) SetField(name, value string) error {
	field, err := form.ParseField(name)
	if err != nil {
		return err
	}
	if err := s.form.Update(field, value); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Trigger activates the trigger control. It does nothing and returns false
// while the control is disabled.
func (s *Session) Trigger() bool {
	started := s.orch.TryStart(s.lifetime, s.form.Snapshot())
	if started {
		s.logger.Info().Msg("analysis started")
	}
	return started
}

// Submit runs one analysis synchronously with the current form.
func (s *Session) Submit(ctx context.Context) {
	s.orch.Submit(s.logger.WithContext(ctx), s.form.Snapshot())
}

// Busy reports whether an analysis is in flight.
func (s *Session) Busy() bool {
	return s.orch.Busy()
}

// Wait blocks until triggered analyses have settled.
func (s *Session) Wait() {
	s.orch.Wait()
}

// Changes delivers a signal after state changes. Signals coalesce, so a
// receiver should re-read View rather than count them.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) View() View {
	state := s.orch.Snapshot()

	v := View{
		Phase:   phaseOf(state),
		Form:    s.form.Snapshot(),
		Trigger: TriggerControl{Label: LabelIdle},
		Dataset: state.Dataset,
	}
	if state.InFlight {
		v.Trigger = TriggerControl{Label: LabelInProgress, Disabled: true}
	}

	if len(state.Dataset) > 0 {
		c, err := timeseries.Build(state.Dataset, s.chart)
		if err != nil && !errors.Is(err, timeseries.ErrEmptyDataset) {
			s.logger.Error().Err(err).Msg("failed to build chart")
		}
		v.Chart = c
	}
	v.Insights = insights.Build(state.Insights)
	return v
}

// Close unmounts the session. Settlements arriving later are dropped and
// any triggered request is cancelled.
func (s *Session) Close() {
	s.closed.Do(func() {
		s.cancel()
		s.orch.Close()
		s.logger.Debug().Msg("session closed")
	})
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func phaseOf(state orchestrator.State) Phase {
	if state.InFlight {
		return PhaseSubmitting
	}
	switch state.Insights.(type) {
	case domain.Summary:
		return PhaseDisplayed
	case domain.Failure:
		return PhaseDisplayedWithFailure
	}
	return PhaseIdle
}
