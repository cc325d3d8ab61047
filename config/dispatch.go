package config

import (
	"strings"
	"time"
)

// DispatchConfig controls the notification dispatcher's fan-out behaviour.
type DispatchConfig struct {
	// MaxInFlight bounds concurrent deliveries during fan-out.
	MaxInFlight int `env:"DISPATCH_MAX_IN_FLIGHT" envDefault:"8"`
	// AttemptTimeout bounds a single delivery attempt.
	AttemptTimeout time.Duration `env:"DISPATCH_ATTEMPT_TIMEOUT" envDefault:"5s"`
	// SMSThrottleTTL is the minimum interval between SMS resends per job.
	SMSThrottleTTL time.Duration `env:"DISPATCH_SMS_THROTTLE_TTL" envDefault:"10m"`
}

// Sanitize enforces safe fan-out bounds.
func (c *DispatchConfig) Sanitize() {
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 8
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 5 * time.Second
	}
	if c.SMSThrottleTTL <= 0 {
		c.SMSThrottleTTL = 10 * time.Minute
	}
}

// MaintenanceConfig controls the stale-pending expiry loop.
type MaintenanceConfig struct {
	Enabled  bool          `env:"MAINTENANCE_ENABLED"  envDefault:"true"`
	Interval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"5m"`
	// PendingMaxAge is how long past its scheduled time a pending job may
	// linger before it is cancelled.
	PendingMaxAge time.Duration `env:"MAINTENANCE_PENDING_MAX_AGE" envDefault:"24h"`
	BatchSize     int           `env:"MAINTENANCE_BATCH_SIZE"      envDefault:"100"`
}

// Sanitize enforces safe maintenance bounds.
func (c *MaintenanceConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.PendingMaxAge <= 0 {
		c.PendingMaxAge = 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
}

// MetricsConfig controls emission of metrics to external sinks such as StatsD.
type MetricsConfig struct {
	Enabled       bool   `env:"METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"METRICS_PREFIX"         envDefault:"booking"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *MetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
