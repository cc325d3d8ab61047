package config

import (
	"strings"
	"time"
)

// NotificationsConfig groups the outbound notification gateway settings.
type NotificationsConfig struct {
	Push PushGatewayConfig `envPrefix:"NOTIFY_PUSH_"`
	SMS  SMSGatewayConfig  `envPrefix:"NOTIFY_SMS_"`
}

// Sanitize normalises gateway configuration values.
func (c *NotificationsConfig) Sanitize() {
	c.Push.sanitize()
	c.SMS.sanitize()
}

// PushGatewayConfig controls the HTTP push gateway channel.
type PushGatewayConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Endpoint string `env:"ENDPOINT"`
	APIKey   string `env:"API_KEY"`
	// PayloadExpression optionally reshapes the push body (JMESPath over the
	// job-event payload).
	PayloadExpression string        `env:"PAYLOAD_EXPRESSION"`
	Timeout           time.Duration `env:"TIMEOUT"     envDefault:"5s"`
	RetryLimit        int           `env:"RETRY_LIMIT" envDefault:"2"`
}

func (c *PushGatewayConfig) sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		c.Enabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
}

// SMSGatewayConfig controls the HTTP SMS gateway channel.
type SMSGatewayConfig struct {
	Enabled    bool          `env:"ENABLED"     envDefault:"false"`
	Endpoint   string        `env:"ENDPOINT"`
	APIKey     string        `env:"API_KEY"`
	Sender     string        `env:"SENDER"      envDefault:"bookings"`
	Timeout    time.Duration `env:"TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"RETRY_LIMIT" envDefault:"2"`
}

func (c *SMSGatewayConfig) sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		c.Enabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
}
