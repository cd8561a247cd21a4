package amqp

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestBatchIngestedMessageRoundTrip(t *testing.T) {
	original := BatchIngestedMessage{
		BatchID:   "4f6c2f0a-3a07-4b8e-9d37-0f4af2f4a111",
		Source:    "remote",
		Count:     12,
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := BatchIngestedFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestRecordEditedMessageRoundTrip(t *testing.T) {
	original := RecordEditedMessage{
		Index:     7,
		Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := RecordEditedFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestBatchIngestedFromJSONInvalid(t *testing.T) {
	if _, err := BatchIngestedFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNilClientPublishesAreNoOps(t *testing.T) {
	var c *Client
	if err := c.PublishBatchIngested(context.Background(), "batch-1", "manual", 1); err != nil {
		t.Errorf("nil client PublishBatchIngested: %v", err)
	}
	if err := c.PublishRecordEdited(context.Background(), 0); err != nil {
		t.Errorf("nil client PublishRecordEdited: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil client Close: %v", err)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain error", errors.New("boom"), false},
		{"connection forced", &amqp.Error{Code: amqp.ConnectionForced}, true},
		{"channel error", &amqp.Error{Code: amqp.ChannelError}, true},
		{"access refused", &amqp.Error{Code: amqp.AccessRefused}, false},
		{"net timeout", &net.DNSError{IsTimeout: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := 2 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{10, 2 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt, base, max); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
