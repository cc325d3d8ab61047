package smsgw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/interpretek/booking-core/internal/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when endpoint missing")
	}
}

func TestSendSMSPostsMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL, APIKey: "secret", Sender: "interpretek"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := notify.JobEventPayload{Event: notify.EventJobAssigned, Message: "you got the job"}
	if err := client.SendSMS(context.Background(), "+4670123456", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["from"] != "interpretek" || got["to"] != "+4670123456" {
		t.Fatalf("unexpected envelope: %v", got)
	}
	if got["text"] != "you got the job" {
		t.Fatalf("expected message text, got %v", got["text"])
	}
}

func TestSendSMSDefaultText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := notify.JobEventPayload{
		Event:        notify.EventJobCreated,
		FromLanguage: "swedish",
		ToLanguage:   "somali",
		ScheduledAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	if err := client.SendSMS(context.Background(), "+4670123456", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := got["text"].(string)
	for _, want := range []string{"swedish", "somali", "2026-03-14 09:30"} {
		if !strings.Contains(text, want) {
			t.Fatalf("default text missing %q: %s", want, text)
		}
	}
}

func TestSendSMSRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "carrier down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL, RetryLimit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendSMS(context.Background(), "+4670123456", notify.JobEventPayload{})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "carrier down") {
		t.Fatalf("expected gateway message in error, got %v", err)
	}
}

func TestSendSMSRequiresPhoneNumber(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://gw.local"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendSMS(context.Background(), "", notify.JobEventPayload{}); err == nil {
		t.Fatal("expected error for blank phone number")
	}
}
