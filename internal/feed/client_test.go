package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/internal/pos"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// MockSubscriber captures the subscription and lets tests inject messages
type MockSubscriber struct {
	topic   string
	handler events.HandlerFunc

	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	m.topic = topic
	m.handler = handler
	return nil
}

// Inject delivers a raw message as if it arrived on the feed
func (m *MockSubscriber) Inject(ctx context.Context, msg []byte) error {
	return m.handler(ctx, msg)
}

// MockApplier records applied changes
type MockApplier struct {
	Applied []event.ChangeEvent
	Err     error
}

func (m *MockApplier) ApplyChange(ctx context.Context, ev event.ChangeEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Applied = append(m.Applied, ev)
	return nil
}

func changeMessage(t *testing.T, op, entity string) []byte {
	t.Helper()
	ev := event.ChangeEvent{
		Operation:  op,
		Entity:     entity,
		OccurredAt: time.Now(),
		Payload:    json.RawMessage(`{"id":"e0ae67b1-93ea-427e-96fb-0c1a3913b78a","status":"pending"}`),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func TestClientStartResyncsThenSubscribes(t *testing.T) {
	sub := &MockSubscriber{}
	applier := &MockApplier{}

	var resyncs int
	client := NewClient(sub, "rest-1", applier, func(ctx context.Context) error {
		resyncs++
		return nil
	}, nil)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if resyncs != 1 {
		t.Errorf("resync ran %d times, want 1", resyncs)
	}
	if sub.topic != event.ChangeTopic("rest-1") {
		t.Errorf("subscribed to %q, want %q", sub.topic, event.ChangeTopic("rest-1"))
	}
}

func TestClientStartSurvivesFailedResync(t *testing.T) {
	sub := &MockSubscriber{}
	client := NewClient(sub, "rest-1", &MockApplier{}, func(ctx context.Context) error {
		return errors.New("backend down")
	}, nil)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start must tolerate a failed initial resync: %v", err)
	}
	if sub.handler == nil {
		t.Error("subscription skipped after failed resync")
	}
}

func TestClientStartFailsWhenSubscribeFails(t *testing.T) {
	sub := &MockSubscriber{
		SubscribeFunc: func(ctx context.Context, topic string, handler events.HandlerFunc) error {
			return errors.New("no broker")
		},
	}
	client := NewClient(sub, "rest-1", &MockApplier{}, nil, nil)

	if err := client.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded with no subscription")
	}
}

func TestClientAppliesAndFansOut(t *testing.T) {
	sub := &MockSubscriber{}
	applier := &MockApplier{}

	var seen []event.ChangeEvent
	client := NewClient(sub, "rest-1", applier, nil, nil,
		WithOnEvent(func(ev event.ChangeEvent) {
			seen = append(seen, ev)
		}))
	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	msg := changeMessage(t, event.OpInsert, event.EntityOrder)
	if err := sub.Inject(context.Background(), msg); err != nil {
		t.Fatalf("inject: %v", err)
	}

	if len(applier.Applied) != 1 {
		t.Fatalf("applied %d events, want 1", len(applier.Applied))
	}
	if applier.Applied[0].Entity != event.EntityOrder {
		t.Errorf("entity = %s, want %s", applier.Applied[0].Entity, event.EntityOrder)
	}
	if len(seen) != 1 {
		t.Errorf("fan-out hook ran %d times, want 1", len(seen))
	}
}

func TestClientRejectsMalformedMessage(t *testing.T) {
	sub := &MockSubscriber{}
	applier := &MockApplier{}
	client := NewClient(sub, "rest-1", applier, nil, nil)
	client.Start(context.Background())

	if err := sub.Inject(context.Background(), []byte("not json")); err == nil {
		t.Error("malformed message accepted")
	}
	if len(applier.Applied) != 0 {
		t.Error("malformed message reached the applier")
	}
}

func TestClientHookSkippedWhenApplyFails(t *testing.T) {
	sub := &MockSubscriber{}
	applier := &MockApplier{Err: errors.New("board rejected")}

	hookRan := false
	client := NewClient(sub, "rest-1", applier, nil, nil,
		WithOnEvent(func(ev event.ChangeEvent) { hookRan = true }))
	client.Start(context.Background())

	sub.Inject(context.Background(), changeMessage(t, event.OpUpdate, event.EntityOrder))
	if hookRan {
		t.Error("fan-out ran for an event the board refused")
	}
}

func TestClientResyncDirect(t *testing.T) {
	var resyncs int
	client := NewClient(&MockSubscriber{}, "rest-1", &MockApplier{}, func(ctx context.Context) error {
		resyncs++
		return nil
	}, nil)

	// Reconnect callback path: Resync is invoked directly.
	if err := client.Resync(context.Background()); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if resyncs != 1 {
		t.Errorf("resync ran %d times, want 1", resyncs)
	}

	// A client without a resync source is still valid.
	bare := NewClient(&MockSubscriber{}, "rest-1", &MockApplier{}, nil, nil)
	if err := bare.Resync(context.Background()); err != nil {
		t.Errorf("Resync without source: %v", err)
	}
}

func orderMessage(t *testing.T, op string, o pos.Order) []byte {
	t.Helper()
	payload, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	data, err := json.Marshal(event.ChangeEvent{
		Operation:  op,
		Entity:     event.EntityOrder,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

// After a reconnect the board must equal what a fresh fetch returns, no
// matter what the feed delivered before the drop.
func TestClientResyncAfterReconnectMatchesFreshFetch(t *testing.T) {
	board := pos.NewBoard(nil, nil)

	idA := uuid.New()
	idB := uuid.New()
	idC := uuid.New()

	// The authoritative fetch result; reassigned to simulate backend state
	// moving on while the terminal is offline.
	fetch := []pos.Order{
		{ID: idA, RestaurantID: "rest-1", Status: orderstatus.Statuses.Pending.Code()},
	}

	sub := &MockSubscriber{}
	client := NewClient(sub, "rest-1", board, func(ctx context.Context) error {
		board.Seed(fetch, nil)
		return nil
	}, nil)
	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Live feed traffic before the connection drops.
	sub.Inject(context.Background(), orderMessage(t, event.OpInsert,
		pos.Order{ID: idB, RestaurantID: "rest-1", Status: orderstatus.Statuses.Pending.Code()}))
	sub.Inject(context.Background(), orderMessage(t, event.OpUpdate,
		pos.Order{ID: idA, RestaurantID: "rest-1", Status: orderstatus.Statuses.Confirmed.Code()}))

	// While offline: A advanced, B completed and left the active set, C is
	// new.
	fetch = []pos.Order{
		{ID: idA, RestaurantID: "rest-1", Status: orderstatus.Statuses.Preparing.Code()},
		{ID: idC, RestaurantID: "rest-1", Status: orderstatus.Statuses.Pending.Code()},
	}

	// Reconnect callback path.
	if err := client.Resync(context.Background()); err != nil {
		t.Fatalf("Resync: %v", err)
	}

	got := board.Orders()
	if len(got) != len(fetch) {
		t.Fatalf("board has %d orders after resync, want %d", len(got), len(fetch))
	}
	byID := make(map[uuid.UUID]string, len(got))
	for _, o := range got {
		byID[o.ID] = o.Status
	}
	for _, want := range fetch {
		if byID[want.ID] != want.Status {
			t.Errorf("order %s status = %q, want %q", want.ID, byID[want.ID], want.Status)
		}
	}
	if _, stale := byID[idB]; stale {
		t.Error("order gone from the backend survived the resync")
	}
}
