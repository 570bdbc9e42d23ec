package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wms-platform/task-service/internal/domain"
	"github.com/wms-platform/task-service/pkg/logging"
	"github.com/wms-platform/task-service/pkg/metrics"
)

// Client creates stock documents in the ERP backend over HTTP. Calls go
// through a circuit breaker so a struggling ERP degrades completions into
// error-logged ones instead of hanging every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// Config holds ERP client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a default ERP client configuration
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// NewClient creates a new ERP client
func NewClient(config *Config, logger *logging.Logger, m *metrics.Metrics) *Client {
	log := logger.WithComponent("erp-client")

	settings := gobreaker.Settings{
		Name:        "erp-documents",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     log,
		metrics:    m,
	}
}

type transferRequest struct {
	SourceWarehouse string               `json:"sourceWarehouse,omitempty"`
	TargetWarehouse string               `json:"targetWarehouse,omitempty"`
	Rows            []domain.TransferRow `json:"rows"`
}

type reconciliationRequest struct {
	Warehouse string                     `json:"warehouse"`
	Rows      []domain.ReconciliationRow `json:"rows"`
}

type documentResponse struct {
	DocumentRef string `json:"documentRef"`
}

// CreateTransferDocument submits a stock transfer document and returns its
// reference
func (c *Client) CreateTransferDocument(ctx context.Context, rows []domain.TransferRow, sourceWarehouse, targetWarehouse string) (string, error) {
	payload := transferRequest{
		SourceWarehouse: sourceWarehouse,
		TargetWarehouse: targetWarehouse,
		Rows:            rows,
	}
	return c.createDocument(ctx, "transfer", "/api/documents/stock-transfers", payload)
}

// CreateReconciliationDocument submits a stock reconciliation document and
// returns its reference
func (c *Client) CreateReconciliationDocument(ctx context.Context, rows []domain.ReconciliationRow, warehouse string) (string, error) {
	payload := reconciliationRequest{
		Warehouse: warehouse,
		Rows:      rows,
	}
	return c.createDocument(ctx, "reconciliation", "/api/documents/stock-reconciliations", payload)
}

func (c *Client) createDocument(ctx context.Context, documentType, path string, payload any) (string, error) {
	start := time.Now()

	ref, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, path, payload)
	})

	status := "success"
	if err != nil {
		status = "failure"
	}
	c.metrics.RecordDocumentRequest(documentType, status, time.Since(start))

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		c.logger.Warn("Document request rejected by circuit breaker", "documentType", documentType)
		return "", fmt.Errorf("document service unavailable: %w", err)
	}
	if err != nil {
		return "", err
	}

	return ref.(string), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build document request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("document request returned %d: %s", resp.StatusCode, string(data))
	}

	var doc documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode document response: %w", err)
	}
	if doc.DocumentRef == "" {
		return "", fmt.Errorf("document response missing reference")
	}

	return doc.DocumentRef, nil
}
