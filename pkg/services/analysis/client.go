package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/route-trends/pkg/adapters"
	"github.com/de-tools/route-trends/pkg/models/api"
	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint = "http://localhost:8000/api/analyze"

	maxErrorBody = 512
)

type Settings struct {
	Endpoint string
	// Timeout of zero leaves the request unbounded.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// HTTPClient posts route queries to the analysis service.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPClient(settings Settings) (*HTTPClient, error) {
	endpoint := strings.TrimSpace(settings.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("invalid analysis endpoint %q: expected an http(s) URL", endpoint)
	}

	httpClient := settings.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: settings.Timeout}
	}

	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}, nil
}

func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Analyze issues exactly one request. Failures wrap ErrTransport, ErrStatus
// or ErrMalformed.
func (c *HTTPClient) Analyze(ctx context.Context, query domain.RouteQuery) (*domain.Analysis, error) {
	logger := zerolog.Ctx(ctx).With().Str("endpoint", c.endpoint).Logger()

	payload, err := json.Marshal(adapters.MapDomainQueryToAPIRequest(query))
	if err != nil {
		return nil, fmt.Errorf("failed to encode route query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("analysis service responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded api.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	analysis, err := adapters.MapAPIResponseToDomainAnalysis(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return analysis, nil
}
