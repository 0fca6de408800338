// Package webhook pushes batch results back to the disbursing party. The
// protocol does not promise exactly-once delivery: a failed push is logged
// and dropped, and the disbursing side's Sent rows stay visible until a later
// push converges them.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"payrail/internal/payments"
)

// Dispatcher consumes result batches from a buffered channel and delivers
// them over HTTP with the shared-secret header. It keeps delivery off the
// notification request path.
type Dispatcher struct {
	url    string
	apiKey string
	client *http.Client
	inbox  chan []payments.Result
	logger *slog.Logger
}

func New(url, apiKey string, client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{
		url:    url,
		apiKey: apiKey,
		client: client,
		inbox:  make(chan []payments.Result, 64),
		logger: logger,
	}
}

// Enqueue hands a result batch to the dispatcher. When the inbox is full the
// batch is dropped with a log line rather than blocking the caller's request.
func (d *Dispatcher) Enqueue(results []payments.Result) {
	select {
	case d.inbox <- results:
	default:
		d.logger.Warn("webhook inbox full, dropping delivery", "results", len(results))
	}
}

// Run delivers queued batches until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results := <-d.inbox:
			d.deliver(ctx, results)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, results []payments.Result) {
	body, err := json.Marshal(results)
	if err != nil {
		d.logger.ErrorContext(ctx, "marshal webhook delivery", "error", err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "build webhook request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.WarnContext(ctx, "webhook delivery failed", "url", d.url, "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.WarnContext(ctx, "webhook delivery rejected", "url", d.url, "status", resp.StatusCode)
		return
	}
	d.logger.InfoContext(ctx, "webhook delivered", "results", len(results))
}
