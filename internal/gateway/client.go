package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"payrail/internal/payments"
	pkgerrors "payrail/pkg/errors"
)

// Client performs the outbound calls to a receiving party. Responses are
// returned as raw JSON so the gateway can relay them verbatim; the caller
// never reinterprets a counterparty's payload.
type Client interface {
	ValidateStudent(ctx context.Context, party PartyConfig, studentID string) (json.RawMessage, error)
	SendNotification(ctx context.Context, party PartyConfig, reqs []payments.Request) (json.RawMessage, error)
}

// HTTPClient is the production Client. Every request carries the party's
// shared secret; transport failures and non-2xx responses surface as
// CodeUpstreamUnavailable with the raw error text preserved for the audit
// trail. The core never retries.
type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient(client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{client: client}
}

func (c *HTTPClient) ValidateStudent(ctx context.Context, party PartyConfig, studentID string) (json.RawMessage, error) {
	body := map[string]string{"studentId": studentID}
	return c.post(ctx, party, "/api/students/validate", body)
}

func (c *HTTPClient) SendNotification(ctx context.Context, party PartyConfig, reqs []payments.Request) (json.RawMessage, error) {
	return c.post(ctx, party, "/api/payments/notification", reqs)
}

func (c *HTTPClient) post(ctx context.Context, party PartyConfig, path string, payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "serialize outbound request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, party.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "build outbound request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", party.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeUpstreamUnavailable,
			fmt.Sprintf("call %s %s", party.Code, path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeUpstreamUnavailable,
			fmt.Sprintf("read %s response", party.Code))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamUnavailable,
			fmt.Sprintf("%s returned %d: %s", party.Code, resp.StatusCode, string(body)))
	}
	return json.RawMessage(body), nil
}
