package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// LibEvaluator implements JMESPathEvaluator using go-jmespath.
type LibEvaluator struct{}

// Validate compiles the expression and reports syntax errors. Blank
// expressions are accepted.
func (LibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

// Evaluate runs the expression against the supplied document.
func (LibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// RenderBody shapes the outbound gateway body from a payload. With a blank
// expression the payload document itself is returned; otherwise the JMESPath
// result becomes the body.
func RenderBody(ev JMESPathEvaluator, expr string, payload JobEventPayload) (any, error) {
	doc, err := payloadDocument(payload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(expr) == "" {
		return doc, nil
	}
	if ev == nil {
		ev = LibEvaluator{}
	}
	out, err := ev.Evaluate(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate payload expression: %w", err)
	}
	return out, nil
}

// payloadDocument converts the payload into the generic map form JMESPath
// expressions operate on.
func payloadDocument(payload JobEventPayload) (map[string]any, error) {
	doc := map[string]any{
		"event":         payload.Event,
		"job_id":        payload.JobID,
		"customer_id":   payload.CustomerID,
		"translator_id": payload.TranslatorID,
		"from_language": payload.FromLanguage,
		"to_language":   payload.ToLanguage,
		"town":          payload.Town,
		"on_site":       payload.OnSite,
		"certification": payload.Certification,
		"scheduled_at":  payload.ScheduledAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"message":       payload.Message,
		"occurred_at":   payload.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(payload.Metadata) > 0 {
		meta := make(map[string]any, len(payload.Metadata))
		for k, v := range payload.Metadata {
			meta[k] = v
		}
		doc["metadata"] = meta
	}
	// Round-trip through JSON so nested values match what jmespath expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode payload document: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode payload document: %w", err)
	}
	return generic, nil
}
