package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Analyze(ctx context.Context, query domain.RouteQuery) (*domain.Analysis, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

var sydMel = domain.RouteQuery{
	Origin:      "SYD",
	Destination: "MEL",
	StartDate:   "2024-01-01",
	EndDate:     "2024-01-07",
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Data: []domain.DataPoint{{Date: "2024-01-01", Bookings: 120, Price: 199.5}},
		Insights: domain.Summary{
			DemandTrend:  "up",
			PriceTrend:   "down",
			PopularDays:  []string{"Mon", "Fri"},
			Observations: "Stable demand",
		},
	}
}

func TestSubmit_SuccessFillsBothSlots(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).Return(sampleAnalysis(), nil).Once()

	var changes atomic.Int32
	o := New(context.Background(), client, WithOnChange(func() { changes.Add(1) }))

	o.Submit(context.Background(), sydMel)

	state := o.Snapshot()
	assert.False(t, state.InFlight)
	assert.Equal(t, sampleAnalysis().Data, state.Dataset)
	assert.Equal(t, sampleAnalysis().Insights, state.Insights)
	assert.Equal(t, int32(2), changes.Load(), "one change on start, one on settlement")
	client.AssertExpectations(t)
}

func TestSubmit_InFlightWhileRequestRuns(t *testing.T) {
	client := new(mockClient)
	var o *Orchestrator
	client.On("Analyze", mock.Anything, sydMel).
		Run(func(mock.Arguments) {
			assert.True(t, o.Snapshot().InFlight)
		}).
		Return(sampleAnalysis(), nil)

	o = New(context.Background(), client)
	o.Submit(context.Background(), sydMel)

	assert.False(t, o.Snapshot().InFlight)
}

func TestSubmit_FailureKeepsDataset(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).Return(sampleAnalysis(), nil).Once()
	client.On("Analyze", mock.Anything, sydMel).Return(nil, fmt.Errorf("%w: connection refused", analysis.ErrTransport)).Once()

	o := New(context.Background(), client)
	o.Submit(context.Background(), sydMel)
	o.Submit(context.Background(), sydMel)

	state := o.Snapshot()
	assert.False(t, state.InFlight)
	assert.Equal(t, sampleAnalysis().Data, state.Dataset)
	require.IsType(t, domain.Failure{}, state.Insights)
	assert.Equal(t, "Analysis failed: analysis service unreachable: connection refused", state.Insights.(domain.Failure).Message)
}

func TestSubmit_FirstFailureLeavesDatasetEmpty(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, mock.Anything).Return(nil, errors.New("network down"))

	o := New(context.Background(), client)
	o.Submit(context.Background(), domain.RouteQuery{})

	state := o.Snapshot()
	assert.Empty(t, state.Dataset)
	assert.Equal(t, domain.Failure{Message: "Analysis failed: network down"}, state.Insights)
}

func TestSubmit_NilResultIsMalformed(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, mock.Anything).Return(nil, nil)

	o := New(context.Background(), client)
	o.Submit(context.Background(), domain.RouteQuery{})

	assert.Equal(t,
		domain.Failure{Message: analysis.Message(analysis.ErrMalformed)},
		o.Snapshot().Insights,
	)
}

func TestSubmit_PanicBecomesFailure(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, mock.Anything).Panic("client exploded")

	o := New(context.Background(), client)

	assert.NotPanics(t, func() {
		o.Submit(context.Background(), sydMel)
	})
	state := o.Snapshot()
	assert.False(t, state.InFlight)
	assert.Empty(t, state.Dataset)
	assert.Equal(t,
		domain.Failure{Message: "Analysis failed: analysis client panicked: client exploded"},
		state.Insights,
	)
}

func TestTryStart_PanicInBackgroundIsRecovered(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).Return(sampleAnalysis(), nil).Once()
	client.On("Analyze", mock.Anything, sydMel).Panic("client exploded").Once()

	o := New(context.Background(), client)
	o.Submit(context.Background(), sydMel)

	require.True(t, o.TryStart(context.Background(), sydMel))
	o.Wait()

	state := o.Snapshot()
	assert.False(t, state.InFlight)
	assert.Equal(t, sampleAnalysis().Data, state.Dataset)
	assert.IsType(t, domain.Failure{}, state.Insights)
	assert.False(t, o.Busy())
}

func TestTryStart_RefusedAfterClose(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleAnalysis(), nil).
		Once()

	o := New(context.Background(), client)
	require.True(t, o.TryStart(context.Background(), sydMel))
	<-started

	closed := make(chan struct{})
	go func() {
		o.Close()
		close(closed)
	}()

	close(release)
	<-closed

	assert.False(t, o.TryStart(context.Background(), sydMel))
	assert.Equal(t, sampleAnalysis().Data, o.Snapshot().Dataset)
	client.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestTryStart_RefusedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleAnalysis(), nil).
		Once()

	o := New(context.Background(), client)

	require.True(t, o.TryStart(context.Background(), sydMel))
	<-started
	assert.True(t, o.Snapshot().InFlight)
	assert.False(t, o.TryStart(context.Background(), sydMel))
	assert.False(t, o.TryStart(context.Background(), sydMel))

	close(release)
	o.Wait()

	assert.False(t, o.Snapshot().InFlight)
	client.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestTryStart_AllowedAgainAfterSettlement(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).Return(sampleAnalysis(), nil)

	o := New(context.Background(), client)

	require.True(t, o.TryStart(context.Background(), sydMel))
	o.Wait()
	require.True(t, o.TryStart(context.Background(), sydMel))
	o.Wait()

	client.AssertNumberOfCalls(t, "Analyze", 2)
}

func TestSettlementAfterLifetimeEndsIsDropped(t *testing.T) {
	lifetime, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	started := make(chan struct{})

	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleAnalysis(), nil)

	var changes atomic.Int32
	o := New(lifetime, client, WithOnChange(func() { changes.Add(1) }))

	require.True(t, o.TryStart(context.Background(), sydMel))
	<-started
	cancel()
	before := changes.Load()
	close(release)
	o.Wait()

	state := o.Snapshot()
	assert.False(t, state.InFlight)
	assert.Empty(t, state.Dataset)
	assert.Nil(t, state.Insights)
	assert.Equal(t, before, changes.Load())
	assert.False(t, o.TryStart(context.Background(), sydMel))
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	client := new(mockClient)
	client.On("Analyze", mock.Anything, sydMel).Return(sampleAnalysis(), nil)

	o := New(context.Background(), client)
	o.Submit(context.Background(), sydMel)

	state := o.Snapshot()
	state.Dataset[0].Bookings = 0

	assert.Equal(t, float64(120), o.Snapshot().Dataset[0].Bookings)
}
