package commands

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/appetiteclub/apt/events"

	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

func TestEncodeChangeEvent(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid insert", `{"operation":"insert","entity":"order","payload":{"id":"x"}}`, false},
		{"valid delete", `{"operation":"delete","entity":"service_request","payload":{"id":"x"}}`, false},
		{"unknown operation", `{"operation":"upsert","entity":"order","payload":{}}`, true},
		{"unknown entity", `{"operation":"insert","entity":"menu","payload":{}}`, true},
		{"not json", `nope`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := encodeChangeEvent([]byte(tt.raw), now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeChangeEvent: %v", err)
			}
			var ev event.ChangeEvent
			if err := json.Unmarshal(out, &ev); err != nil {
				t.Fatalf("output is not a change event: %v", err)
			}
			if !ev.OccurredAt.Equal(now) {
				t.Errorf("occurred_at = %v, want stamped %v", ev.OccurredAt, now)
			}
		})
	}
}

func TestEncodeChangeEventKeepsOccurredAt(t *testing.T) {
	stamped := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	raw := `{"operation":"update","entity":"order","occurred_at":"2026-08-01T09:30:00Z","payload":{}}`

	out, err := encodeChangeEvent([]byte(raw), time.Now())
	if err != nil {
		t.Fatalf("encodeChangeEvent: %v", err)
	}
	var ev event.ChangeEvent
	if err := json.Unmarshal(out, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !ev.OccurredAt.Equal(stamped) {
		t.Errorf("occurred_at = %v, want original %v", ev.OccurredAt, stamped)
	}
}

func TestFormatStreamMessage(t *testing.T) {
	ev := event.ChangeEvent{
		Operation:  event.OpInsert,
		Entity:     event.EntityOrder,
		OccurredAt: time.Now(),
		Payload:    json.RawMessage(`{"id":"x"}`),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	line := formatStreamMessage(events.StreamMessage{
		Data:      data,
		Sequence:  42,
		Timestamp: time.Now().UnixNano(),
	})
	for _, want := range []string{"seq=42", event.OpInsert, event.EntityOrder} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	junk := formatStreamMessage(events.StreamMessage{Data: []byte("junk"), Sequence: 7})
	if !strings.Contains(junk, "not a change event") {
		t.Errorf("junk line %q not flagged", junk)
	}
}
