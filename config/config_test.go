package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		t.Fatal("expected migrations on start by default")
	}
	if cfg.Dispatch.MaxInFlight != 8 {
		t.Fatalf("unexpected fan-out bound: %d", cfg.Dispatch.MaxInFlight)
	}
	if cfg.Maintenance.Interval != 5*time.Minute {
		t.Fatalf("unexpected maintenance interval: %s", cfg.Maintenance.Interval)
	}
}

func TestNotificationsSanitizeDisablesWithoutEndpoint(t *testing.T) {
	cfg := NotificationsConfig{
		Push: PushGatewayConfig{Enabled: true, Endpoint: "   "},
		SMS:  SMSGatewayConfig{Enabled: true, Endpoint: ""},
	}
	cfg.Sanitize()

	if cfg.Push.Enabled {
		t.Fatal("push should be disabled without an endpoint")
	}
	if cfg.SMS.Enabled {
		t.Fatal("sms should be disabled without an endpoint")
	}
	if cfg.Push.Timeout != 5*time.Second {
		t.Fatalf("expected timeout default, got %s", cfg.Push.Timeout)
	}
}

func TestDispatchSanitizeBounds(t *testing.T) {
	cfg := DispatchConfig{MaxInFlight: -1, AttemptTimeout: -time.Second, SMSThrottleTTL: 0}
	cfg.Sanitize()

	if cfg.MaxInFlight != 8 {
		t.Fatalf("expected fan-out bound reset, got %d", cfg.MaxInFlight)
	}
	if cfg.AttemptTimeout != 5*time.Second {
		t.Fatalf("expected attempt timeout reset, got %s", cfg.AttemptTimeout)
	}
	if cfg.SMSThrottleTTL != 10*time.Minute {
		t.Fatalf("expected throttle reset, got %s", cfg.SMSThrottleTTL)
	}
}

func TestMetricsSanitize(t *testing.T) {
	cfg := MetricsConfig{Enabled: true, StatsdAddress: "  "}
	cfg.Sanitize()

	if cfg.IsEnabled() {
		t.Fatal("metrics should be disabled without an address")
	}

	cfg = MetricsConfig{Enabled: true, StatsdAddress: "127.0.0.1:8125"}
	cfg.Sanitize()
	if !cfg.IsEnabled() {
		t.Fatal("metrics should be enabled with an address")
	}
}
