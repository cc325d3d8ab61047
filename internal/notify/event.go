package notify

import (
	"context"
	"time"
)

// Event names carried on outbound notifications.
const (
	EventJobCreated   = "job.created"
	EventJobAssigned  = "job.assigned"
	EventJobStarted   = "job.started"
	EventJobCompleted = "job.completed"
	EventJobCancelled = "job.cancelled"
	EventJobNoShow    = "job.no_show"
	EventJobReopened  = "job.reopened"
)

// JobEventPayload captures the canonical data we emit for booking notifications.
type JobEventPayload struct {
	Event         string
	JobID         string
	CustomerID    string
	TranslatorID  string
	FromLanguage  string
	ToLanguage    string
	Town          string
	OnSite        bool
	Certification string
	ScheduledAt   time.Time
	Message       string
	OccurredAt    time.Time
	Metadata      map[string]string
}

// PushSender describes a destination capable of delivering push notifications
// to a single device token.
type PushSender interface {
	SendPush(ctx context.Context, token string, payload JobEventPayload) error
}

// PushSenderFunc adapts a function to the PushSender interface (useful for tests).
type PushSenderFunc func(ctx context.Context, token string, payload JobEventPayload) error

// SendPush implements the PushSender interface.
func (f PushSenderFunc) SendPush(ctx context.Context, token string, payload JobEventPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, token, payload)
}

// SMSSender describes a destination capable of delivering SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber string, payload JobEventPayload) error
}

// SMSSenderFunc adapts a function to the SMSSender interface.
type SMSSenderFunc func(ctx context.Context, phoneNumber string, payload JobEventPayload) error

// SendSMS implements the SMSSender interface.
func (f SMSSenderFunc) SendSMS(ctx context.Context, phoneNumber string, payload JobEventPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, phoneNumber, payload)
}

// SMSResult reports the outcome of a single SMS delivery attempt back to the
// caller. A failed send carries the reason instead of surfacing an error.
type SMSResult struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}
