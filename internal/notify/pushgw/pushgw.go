// Package pushgw delivers booking push notifications through an HTTP push
// gateway (FCM-style relay).
package pushgw

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

	"github.com/interpretek/booking-core/internal/notify"
)

// Config captures runtime configuration for the push gateway client.
type Config struct {
	Endpoint string
	APIKey   string
	// PayloadExpression optionally reshapes the outbound body via JMESPath.
	PayloadExpression string
	Timeout           time.Duration
	RetryLimit        int
	Client            *http.Client
	Evaluator         notify.JMESPathEvaluator
}

// Client posts push notifications to the configured gateway endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	bodyExpr   string
	retryLimit int
	client     *http.Client
	evaluator  notify.JMESPathEvaluator
}

// NewClient builds a push gateway client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("push gateway endpoint is required")
	}

	ev := cfg.Evaluator
	if ev == nil {
		ev = notify.LibEvaluator{}
	}
	if err := ev.Validate(cfg.PayloadExpression); err != nil {
		return nil, fmt.Errorf("invalid payload expression: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := max(cfg.RetryLimit, 0)

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		bodyExpr:   strings.TrimSpace(cfg.PayloadExpression),
		retryLimit: retries,
		client:     hc,
		evaluator:  ev,
	}, nil
}

// SendPush posts the payload to the gateway for a single device token.
func (c *Client) SendPush(ctx context.Context, token string, payload notify.JobEventPayload) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("push token is required")
	}

	doc, err := notify.RenderBody(c.evaluator, c.bodyExpr, payload)
	if err != nil {
		return fmt.Errorf("render push payload: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"to":           token,
		"notification": doc,
	})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "key="+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleErrorResponse(resp)
	}

	return drainSuccess(resp)
}

func drainSuccess(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain push response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain push response body: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func handleErrorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("read push error response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("read push error response: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return fmt.Errorf("push gateway %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}
