// Package smsgw delivers booking SMS notifications through an HTTP SMS
// gateway.
package smsgw

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

// Config captures runtime configuration for the SMS gateway client.
type Config struct {
	Endpoint   string
	APIKey     string
	Sender     string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client submits SMS messages to the configured gateway endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	sender     string
	retryLimit int
	client     *http.Client
}

// NewClient constructs an SMS gateway client from config. Callers must
// provide an endpoint.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("sms gateway endpoint is required")
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
		sender:     fallbackString(strings.TrimSpace(cfg.Sender), "bookings"),
		retryLimit: retries,
		client:     hc,
	}, nil
}

// SendSMS submits one message to the gateway.
func (c *Client) SendSMS(ctx context.Context, phoneNumber string, payload notify.JobEventPayload) error {
	phone := strings.TrimSpace(phoneNumber)
	if phone == "" {
		return errors.New("phone number is required")
	}

	text := payload.Message
	if strings.TrimSpace(text) == "" {
		text = defaultText(payload)
	}

	body, err := json.Marshal(map[string]any{
		"from": c.sender,
		"to":   phone,
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.submit(ctx, body)
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

func defaultText(payload notify.JobEventPayload) string {
	when := payload.ScheduledAt.UTC().Format("2006-01-02 15:04")
	return fmt.Sprintf(
		"[%s] Interpretation %s -> %s on %s",
		fallbackString(payload.Event, "booking"),
		payload.FromLanguage, payload.ToLanguage, when,
	)
}

func fallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (c *Client) submit(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
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
				fmt.Errorf("drain sms response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain sms response body: %w", err)
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
				fmt.Errorf("read sms error response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("read sms error response: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return fmt.Errorf("sms gateway %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}
