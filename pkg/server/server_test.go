package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/route-trends/pkg/models/api"
	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/rs/zerolog"
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

// Requests carry no cookie. Only the accepted field update starts a session.
func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	sessions := session.NewRegistry(new(mockClient), session.Options{Logger: logger})
	defer sessions.Close()

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Sessions: sessions,
			Logger:   logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "GetState",
			method:         http.MethodGet,
			path:           "/api/v1/state",
			expectedStatus: http.StatusOK,
			expected: api.SessionState{
				Phase:   "idle",
				Trigger: api.Trigger{Label: "Analyze Trends"},
			},
			parseResponse: unmarshalResponse[api.SessionState](),
		},
		{
			name:           "UpdateField",
			method:         http.MethodPut,
			path:           "/api/v1/fields/destination",
			body:           `{"value":"MEL"}`,
			expectedStatus: http.StatusOK,
			expected: api.SessionState{
				Phase:   "idle",
				Form:    api.AnalyzeRequest{Destination: "MEL"},
				Trigger: api.Trigger{Label: "Analyze Trends"},
			},
			parseResponse: unmarshalResponse[api.SessionState](),
		},
		{
			name:           "UpdateField_Unknown",
			method:         http.MethodPut,
			path:           "/api/v1/fields/cabin",
			body:           `{"value":"economy"}`,
			expectedStatus: http.StatusBadRequest,
			expected:       "unknown form field: \"cabin\"\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "Chart_NotMounted",
			method:         http.MethodGet,
			path:           "/chart.svg",
			expectedStatus: http.StatusNotFound,
			expected:       "404 page not found\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "Health",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
			expected:       map[string]interface{}{"status": "ok", "sessions": float64(1)},
			parseResponse:  unmarshalResponse[map[string]interface{}](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err, "Failed to build request")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_ShutdownClosesSessions(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	sessions := session.NewRegistry(new(mockClient), session.Options{Logger: logger})
	sessions.Create()

	w := NewWebAPI(Config{
		Addr:         "127.0.0.1:0",
		Dependencies: Dependencies{Sessions: sessions, Logger: logger},
	})

	require.NoError(t, w.Shutdown())
	assert.Equal(t, 0, sessions.Len())
}

func TestWebAPI_StartEvictsIdleSessions(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	sessions := session.NewRegistry(new(mockClient), session.Options{Logger: logger})
	stale := sessions.Create()

	w := NewWebAPI(Config{
		Addr:               "127.0.0.1:0",
		SessionIdleTimeout: time.Nanosecond,
		Dependencies:       Dependencies{Sessions: sessions, Logger: logger},
	})
	w.evictEvery = time.Millisecond

	errs := make(chan error, 1)
	go func() { errs <- w.Start() }()

	assert.Eventually(t, func() bool { return sessions.Len() == 0 }, time.Second, time.Millisecond)
	assert.False(t, stale.Trigger())

	require.NoError(t, w.Shutdown())
	assert.ErrorIs(t, <-errs, http.ErrServerClosed)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
