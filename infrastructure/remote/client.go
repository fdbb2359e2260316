// Package remote talks to the legacy PHP backend that serves the card
// catalog and stores saved career paths.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/infrastructure/observability"
)

const maxResponseBytes = 4 << 20

// ClientConfig holds the settings shared by every backend client
type ClientConfig struct {
	BaseURL             string
	Timeout             time.Duration
	BreakerMaxFailures  uint32
	BreakerOpenInterval time.Duration
}

// errServer marks a 5xx reply so the breaker counts it as a failure
var errServer = errors.New("server error")

type response struct {
	status int
	body   []byte
}

// client is a JSON-over-HTTP caller wrapped in a circuit breaker
type client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	collector  *observability.Collector
	tracer     trace.Tracer
	logger     *zap.Logger
}

func newClient(name string, cfg ClientConfig, httpClient *http.Client, collector *observability.Collector, logger *zap.Logger) *client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &client{
		name:       name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
		collector:  collector,
		tracer:     observability.Tracer(),
		logger:     logger,
	}
}

// do sends one request. Network errors, 5xx replies and an open breaker
// come back as errors; any other status is returned to the caller.
func (c *client) do(ctx context.Context, method, path string, session ports.Session, payload any) (response, error) {
	ctx, span := c.tracer.Start(ctx, c.name+" "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("collaborator", c.name),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, method, c.url(path), session, payload)
	})

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case err != nil:
		outcome = "failure"
	}
	if c.collector != nil {
		c.collector.RecordCollaboratorCall(c.name, outcome, time.Since(start))
	}

	resp, _ := result.(response)
	span.SetAttributes(attribute.Int("http.status_code", resp.status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("Backend call failed",
			zap.String("collaborator", c.name),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return resp, err
	}
	return resp, nil
}

func (c *client) send(ctx context.Context, method, url string, session ports.Session, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if session.HasCredential() {
		req.Header.Set("Authorization", "Bearer "+session.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("failed to read response: %w", err)
	}
	out := response{status: resp.StatusCode, body: data}
	if resp.StatusCode >= http.StatusInternalServerError {
		return out, fmt.Errorf("%w: status %d: %s", errServer, resp.StatusCode, errorField(data))
	}
	return out, nil
}

func (c *client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// errorField extracts the backend's {"error": "..."} message, if any
func errorField(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
