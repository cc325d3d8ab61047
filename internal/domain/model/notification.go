package model

import "time"

// NotificationChannel identifies a delivery transport.
type NotificationChannel string

const (
	// ChannelPush is the mobile push-notification transport.
	ChannelPush NotificationChannel = "push"
	// ChannelSMS is the text-message transport.
	ChannelSMS NotificationChannel = "sms"
)

// NotificationOutcome records how a single delivery attempt ended.
type NotificationOutcome string

const (
	// OutcomeDelivered means the transport accepted the message.
	OutcomeDelivered NotificationOutcome = "delivered"
	// OutcomeFailed means the transport rejected the message or timed out.
	OutcomeFailed NotificationOutcome = "failed"
)

// NotificationEvent is the audit record of one notification attempt. It is
// written after the fact for debugging; it carries no retry state.
type NotificationEvent struct {
	ID        string              `json:"id"         db:"id"`
	JobID     string              `json:"job_id"     db:"job_id"`
	Channel   NotificationChannel `json:"channel"    db:"channel"`
	Recipient string              `json:"recipient"  db:"recipient"`
	Event     string              `json:"event"      db:"event"`
	Outcome   NotificationOutcome `json:"outcome"    db:"outcome"`
	Detail    *string             `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}
