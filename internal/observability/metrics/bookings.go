// Package metrics emits standardised booking lifecycle and delivery metrics.
package metrics

import (
	"time"

	obserrors "github.com/interpretek/booking-core/internal/observability/errors"
	"github.com/interpretek/booking-core/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// ClaimMetric captures the outcome of one claim arbitration for metric emission.
type ClaimMetric struct {
	Outcome  string
	Duration time.Duration
	Err      error
}

// EmitClaim emits claim arbitration metrics.
func EmitClaim(sink statsd.Sink, in ClaimMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"outcome": in.Outcome,
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("claim.attempt", 1, tags)

	if in.Duration > 0 {
		sink.Timing("claim.duration", in.Duration, CloneTags(tags))
	}
}

// TransitionMetric captures a lifecycle transition for metric emission.
type TransitionMetric struct {
	Transition string
	Result     string
	Err        error
}

// EmitTransition emits lifecycle transition metrics.
func EmitTransition(sink statsd.Sink, in TransitionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)
}

// DeliveryMetric captures one notification delivery attempt.
type DeliveryMetric struct {
	Channel  string
	Event    string
	Result   string
	Duration time.Duration
}

// EmitDelivery emits notification delivery metrics.
func EmitDelivery(sink statsd.Sink, in DeliveryMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"channel": in.Channel,
		"event":   in.Event,
		"result":  in.Result,
	}

	sink.Count("notify.delivery", 1, tags)

	if in.Duration > 0 {
		sink.Timing("notify.latency", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty maps.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
