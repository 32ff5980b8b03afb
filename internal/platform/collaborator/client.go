// Package collaborator holds HTTP clients for the services that own users,
// orders, carts and notifications.
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/metrics"
	"github.com/fatflowers/checkout/pkg/types"
)

const maxErrorBody = 512

// StatusError is returned for any non-2xx collaborator response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client calls collaborator services under one base URL. Every call is bounded
// by the configured timeout even when the caller's context has none.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	metrics *metrics.PaymentMetrics
	log     *zap.SugaredLogger
}

func NewClient(cfg *config.Config, m *metrics.PaymentMetrics, log *zap.SugaredLogger) *Client {
	timeout := cfg.Collaborators.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Collaborators.BaseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		metrics: m,
		log:     log,
	}
}

type call struct {
	name   string
	method string
	path   string
	token  string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, req call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	defer c.metrics.ObserveSince("collaborator", req.name, time.Now())

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.name, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", req.name, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if tid := logctx.TraceID(ctx); tid != "" {
		httpReq.Header.Set("X-Request-ID", tid)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", req.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", req.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return &StatusError{Method: req.method, Path: req.path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	logctx.FromCtx(ctx, c.log).Debugw("collaborator_call", "call", req.name, "status", resp.StatusCode)
	if req.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, req.out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.name, err)
	}
	return nil
}

// Address accepts either an object or a plain street string.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Address{Street: s}
		return nil
	}
	type plain Address
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Address(p)
	return nil
}

// UserProfile is the subset of the user directory entry used for checkout.
type UserProfile struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Address   *Address `json:"address"`
}

// GetUser loads a user profile. The directory wraps the profile as
// {"user": ...}, {"data": ...} or returns it bare; all three are accepted.
func (c *Client) GetUser(ctx context.Context, userID, token string) (*UserProfile, error) {
	var body json.RawMessage
	if err := c.do(ctx, call{name: "get_user", method: http.MethodGet, path: "/users/" + url.PathEscape(userID), token: token, out: &body}); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty user profile for %s", userID)
	}
	var envelope struct {
		User json.RawMessage `json:"user"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	switch {
	case isObject(envelope.User):
		body = envelope.User
	case isObject(envelope.Data):
		body = envelope.Data
	}
	var u UserProfile
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	return &u, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// UpdateOrder patches the order with its status projection.
func (c *Client) UpdateOrder(ctx context.Context, orderID string, view types.OrderView) error {
	return c.do(ctx, call{name: "update_order", method: http.MethodPatch, path: "/orders/" + url.PathEscape(orderID), body: view})
}

func (c *Client) DeleteCart(ctx context.Context, cartID string) error {
	return c.do(ctx, call{name: "delete_cart", method: http.MethodDelete, path: "/carts/" + url.PathEscape(cartID)})
}

// EmailRequest is the notification service contract for transactional email.
type EmailRequest struct {
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	PaymentDetails any    `json:"paymentDetails"`
}

func (c *Client) SendEmail(ctx context.Context, req EmailRequest) error {
	return c.do(ctx, call{name: "send_email", method: http.MethodPost, path: "/notifications/email", body: req})
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
