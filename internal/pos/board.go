package pos

import (
	"context"
	"encoding/json"
	"sync"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/requesttype"
	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// Notifier receives arrival callbacks for entities the terminal has not
// seen before. Implementations must not block; the board calls them while
// applying feed events.
type Notifier interface {
	OrderArrived(o *Order)
	RequestArrived(r *ServiceRequest)
}

// Board is one terminal's projection of the restaurant's active orders and
// service requests. The backend is the sole writer of authoritative state;
// the board only replaces, inserts and evicts whole records, newest first.
type Board struct {
	mu sync.RWMutex

	orders     map[uuid.UUID]*Order
	orderIDs   []uuid.UUID
	requests   map[uuid.UUID]*ServiceRequest
	requestIDs []uuid.UUID

	notifier Notifier
	logger   aqm.Logger

	// insertViaUpdate counts updates that arrived for orders the board had
	// never seen. Tolerated as out-of-order delivery, but worth watching.
	insertViaUpdate int
}

func NewBoard(notifier Notifier, logger aqm.Logger) *Board {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Board{
		orders:   make(map[uuid.UUID]*Order),
		requests: make(map[uuid.UUID]*ServiceRequest),
		notifier: notifier,
		logger:   logger,
	}
}

// Seed replaces both collections wholesale with the result of a full
// fetch. Used on connect, after every reconnect, and on manual refresh.
// Seeding never notifies; alerts are for incremental arrivals only.
func (b *Board) Seed(orders []Order, requests []ServiceRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders = make(map[uuid.UUID]*Order, len(orders))
	b.orderIDs = b.orderIDs[:0]
	for i := range orders {
		o := orders[i]
		if orderstatus.Terminal(o.Status) {
			continue
		}
		b.orders[o.ID] = &o
		b.orderIDs = append(b.orderIDs, o.ID)
	}

	b.requests = make(map[uuid.UUID]*ServiceRequest, len(requests))
	b.requestIDs = b.requestIDs[:0]
	for i := range requests {
		r := requests[i]
		if r.Status == requesttype.StatusCompleted {
			continue
		}
		b.requests[r.ID] = &r
		b.requestIDs = append(b.requestIDs, r.ID)
	}

	b.logger.Info("board seeded", "orders", len(b.orders), "requests", len(b.requests))
}

// ApplyChange applies one feed event to the projection.
func (b *Board) ApplyChange(ctx context.Context, ev event.ChangeEvent) error {
	switch ev.Entity {
	case event.EntityOrder:
		return b.applyOrderChange(ev)
	case event.EntityServiceRequest:
		return b.applyRequestChange(ev)
	default:
		// Restaurant settings and future entities pass through untouched.
		return nil
	}
}

func (b *Board) applyOrderChange(ev event.ChangeEvent) error {
	if ev.Operation == event.OpDelete {
		var del event.DeletePayload
		if err := json.Unmarshal(ev.Payload, &del); err != nil {
			b.logger.Error("cannot decode order delete payload", "error", err)
			return nil
		}
		id, err := uuid.Parse(del.ID)
		if err != nil {
			return nil
		}
		b.removeOrder(id)
		return nil
	}

	var o Order
	if err := json.Unmarshal(ev.Payload, &o); err != nil {
		b.logger.Error("cannot decode order payload", "error", err)
		return nil
	}

	b.mu.Lock()

	if orderstatus.Terminal(o.Status) {
		b.removeOrderLocked(o.ID)
		b.mu.Unlock()
		return nil
	}

	_, known := b.orders[o.ID]
	if known {
		// Replace in place; also reconciles an optimistic local apply with
		// the authoritative echo.
		b.orders[o.ID] = &o
		b.mu.Unlock()
		return nil
	}

	b.orders[o.ID] = &o
	b.orderIDs = append([]uuid.UUID{o.ID}, b.orderIDs...)
	if ev.Operation == event.OpUpdate {
		b.insertViaUpdate++
		b.logger.Info("order appeared via update", "order_id", o.ID, "count", b.insertViaUpdate)
	}
	b.mu.Unlock()

	if b.notifier != nil {
		b.notifier.OrderArrived(&o)
	}
	return nil
}

func (b *Board) applyRequestChange(ev event.ChangeEvent) error {
	if ev.Operation == event.OpDelete {
		var del event.DeletePayload
		if err := json.Unmarshal(ev.Payload, &del); err != nil {
			b.logger.Error("cannot decode request delete payload", "error", err)
			return nil
		}
		id, err := uuid.Parse(del.ID)
		if err != nil {
			return nil
		}
		b.removeRequest(id)
		return nil
	}

	var r ServiceRequest
	if err := json.Unmarshal(ev.Payload, &r); err != nil {
		b.logger.Error("cannot decode request payload", "error", err)
		return nil
	}

	b.mu.Lock()

	if r.Status == requesttype.StatusCompleted {
		b.removeRequestLocked(r.ID)
		b.mu.Unlock()
		return nil
	}

	_, known := b.requests[r.ID]
	b.requests[r.ID] = &r
	if known {
		b.mu.Unlock()
		return nil
	}
	b.requestIDs = append([]uuid.UUID{r.ID}, b.requestIDs...)
	b.mu.Unlock()

	if b.notifier != nil {
		b.notifier.RequestArrived(&r)
	}
	return nil
}

// SetLocal applies a backend-acknowledged mutation without waiting for the
// feed echo. Terminal statuses evict; the later echo reconciles in place.
func (b *Board) SetLocal(o *Order) {
	if o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if orderstatus.Terminal(o.Status) {
		b.removeOrderLocked(o.ID)
		return
	}
	if _, known := b.orders[o.ID]; !known {
		b.orderIDs = append([]uuid.UUID{o.ID}, b.orderIDs...)
	}
	b.orders[o.ID] = o
}

// SetRequestLocal mirrors SetLocal for service requests.
func (b *Board) SetRequestLocal(r *ServiceRequest) {
	if r == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Status == requesttype.StatusCompleted {
		b.removeRequestLocked(r.ID)
		return
	}
	if _, known := b.requests[r.ID]; !known {
		b.requestIDs = append([]uuid.UUID{r.ID}, b.requestIDs...)
	}
	b.requests[r.ID] = r
}

// Get returns the board's copy of an order, or nil.
func (b *Board) Get(id uuid.UUID) *Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if o := b.orders[id]; o != nil {
		cp := *o
		return &cp
	}
	return nil
}

// GetRequest returns the board's copy of a service request, or nil.
func (b *Board) GetRequest(id uuid.UUID) *ServiceRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r := b.requests[id]; r != nil {
		cp := *r
		return &cp
	}
	return nil
}

// Orders returns a newest-first snapshot of active orders.
func (b *Board) Orders() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Order, 0, len(b.orderIDs))
	for _, id := range b.orderIDs {
		if o := b.orders[id]; o != nil {
			result = append(result, *o)
		}
	}
	return result
}

// Requests returns a newest-first snapshot of open service requests.
func (b *Board) Requests() []ServiceRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]ServiceRequest, 0, len(b.requestIDs))
	for _, id := range b.requestIDs {
		if r := b.requests[id]; r != nil {
			result = append(result, *r)
		}
	}
	return result
}

// InsertViaUpdateCount reports how often an update arrived before its
// insert. A climbing value means the feed is dropping inserts.
func (b *Board) InsertViaUpdateCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.insertViaUpdate
}

func (b *Board) removeOrder(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeOrderLocked(id)
}

func (b *Board) removeOrderLocked(id uuid.UUID) {
	if _, ok := b.orders[id]; !ok {
		return
	}
	delete(b.orders, id)
	for i, oid := range b.orderIDs {
		if oid == id {
			b.orderIDs = append(b.orderIDs[:i], b.orderIDs[i+1:]...)
			break
		}
	}
}

func (b *Board) removeRequest(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeRequestLocked(id)
}

func (b *Board) removeRequestLocked(id uuid.UUID) {
	if _, ok := b.requests[id]; !ok {
		return
	}
	delete(b.requests, id)
	for i, rid := range b.requestIDs {
		if rid == id {
			b.requestIDs = append(b.requestIDs[:i], b.requestIDs[i+1:]...)
			break
		}
	}
}
