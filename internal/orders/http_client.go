package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const submitPath = "/api/v1/orders"

// HTTPClient talks to a remote order service over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *HTTPClient) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var conf domain.OrderConfirmation
		if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
			return nil, fmt.Errorf("%w: decode confirmation: %w", ErrUnavailable, err)
		}
		return &conf, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRejected, readError(resp))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, readError(resp))
	}
}

func readError(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, eb.Error)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
