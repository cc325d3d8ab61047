package notify

import (
	"testing"
	"time"
)

func TestLibEvaluatorValidate(t *testing.T) {
	ev := LibEvaluator{}
	if err := ev.Validate(""); err != nil {
		t.Fatalf("blank expression should validate: %v", err)
	}
	if err := ev.Validate("{title: event}"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := ev.Validate("not a [valid"); err == nil {
		t.Fatal("expected error for invalid expression")
	}
}

func TestRenderBodyDefaultsToDocument(t *testing.T) {
	payload := JobEventPayload{
		Event:       EventJobAssigned,
		JobID:       "job-7",
		OnSite:      true,
		ScheduledAt: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC),
		Metadata:    map[string]string{"reference": "REF-1"},
	}

	out, err := RenderBody(nil, "", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected document, got %T", out)
	}
	if doc["event"] != EventJobAssigned || doc["job_id"] != "job-7" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if doc["on_site"] != true {
		t.Fatalf("expected on_site true, got %v", doc["on_site"])
	}
	meta, ok := doc["metadata"].(map[string]any)
	if !ok || meta["reference"] != "REF-1" {
		t.Fatalf("expected metadata carried through, got %v", doc["metadata"])
	}
}

func TestRenderBodyEvaluatesExpression(t *testing.T) {
	payload := JobEventPayload{Event: EventJobReopened, Town: "Uppsala"}

	out, err := RenderBody(LibEvaluator{}, "{kind: event, where: town}", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected document, got %T", out)
	}
	if doc["kind"] != EventJobReopened || doc["where"] != "Uppsala" {
		t.Fatalf("expression result wrong: %v", doc)
	}
}
