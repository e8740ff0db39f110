package pos

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockBackend is a test mock for Backend
type MockBackend struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order

	ListOrdersFunc           func(ctx context.Context, restaurantID string, statuses []string) ([]Order, error)
	UpdateStatusFunc         func(ctx context.Context, id uuid.UUID, newStatus, expectedStatus, reason string) (*Order, error)
	VoidFunc                 func(ctx context.Context, id uuid.UUID, reason, voidedBy string) error
	SetEstimatedTimeFunc     func(ctx context.Context, id uuid.UUID, minutes int) error
	PaymentStatusFunc        func(ctx context.Context, intentRef string) (string, error)
	ListServiceRequestsFunc  func(ctx context.Context, restaurantID string, statuses []string) ([]ServiceRequest, error)
	UpdateServiceRequestFunc func(ctx context.Context, id uuid.UUID, status, staffID string) (*ServiceRequest, error)
	ProfileFunc              func(ctx context.Context, restaurantID string) (*RestaurantProfile, error)

	UpdateStatusCalls int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		orders: make(map[uuid.UUID]*Order),
	}
}

// AddOrder is a helper to seed the mock backend
func (m *MockBackend) AddOrder(o *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *MockBackend) ListOrders(ctx context.Context, restaurantID string, statuses []string) ([]Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, restaurantID, statuses)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		for _, s := range statuses {
			if o.Status == s {
				result = append(result, *o)
				break
			}
		}
	}
	return result, nil
}

func (m *MockBackend) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus, expectedStatus, reason string) (*Order, error) {
	m.mu.Lock()
	m.UpdateStatusCalls++
	m.mu.Unlock()
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, newStatus, expectedStatus, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, exists := m.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	if o.Status != expectedStatus {
		return nil, ErrPrecondition
	}
	cp := *o
	cp.Status = newStatus
	if reason != "" {
		cp.VoidReason = reason
	}
	m.orders[id] = &cp
	out := cp
	return &out, nil
}

func (m *MockBackend) Void(ctx context.Context, id uuid.UUID, reason, voidedBy string) error {
	if m.VoidFunc != nil {
		return m.VoidFunc(ctx, id, reason, voidedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, exists := m.orders[id]
	if !exists {
		return ErrNotFound
	}
	o.Status = "voided"
	o.VoidReason = reason
	return nil
}

func (m *MockBackend) SetEstimatedTime(ctx context.Context, id uuid.UUID, minutes int) error {
	if m.SetEstimatedTimeFunc != nil {
		return m.SetEstimatedTimeFunc(ctx, id, minutes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, exists := m.orders[id]
	if !exists {
		return ErrNotFound
	}
	o.EstimatedMinutes = &minutes
	return nil
}

func (m *MockBackend) PaymentStatus(ctx context.Context, intentRef string) (string, error) {
	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx, intentRef)
	}
	return "succeeded", nil
}

func (m *MockBackend) ListServiceRequests(ctx context.Context, restaurantID string, statuses []string) ([]ServiceRequest, error) {
	if m.ListServiceRequestsFunc != nil {
		return m.ListServiceRequestsFunc(ctx, restaurantID, statuses)
	}
	return nil, nil
}

func (m *MockBackend) UpdateServiceRequest(ctx context.Context, id uuid.UUID, status, staffID string) (*ServiceRequest, error) {
	if m.UpdateServiceRequestFunc != nil {
		return m.UpdateServiceRequestFunc(ctx, id, status, staffID)
	}
	return &ServiceRequest{ID: id, Status: status, AcknowledgedBy: staffID}, nil
}

func (m *MockBackend) Profile(ctx context.Context, restaurantID string) (*RestaurantProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, restaurantID)
	}
	return &RestaurantProfile{ID: restaurantID, Name: "Test Kitchen"}, nil
}

// MockPrinter counts print calls and captures documents
type MockPrinter struct {
	mu        sync.Mutex
	Documents []string
	PrintFunc func(ctx context.Context, doc string) error
}

func (m *MockPrinter) Print(ctx context.Context, doc string) error {
	if m.PrintFunc != nil {
		return m.PrintFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents = append(m.Documents, doc)
	return nil
}

func (m *MockPrinter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Documents)
}

// MockNotifier records arrival callbacks
type MockNotifier struct {
	mu       sync.Mutex
	Orders   []uuid.UUID
	Requests []uuid.UUID
}

func (m *MockNotifier) OrderArrived(o *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, o.ID)
}

func (m *MockNotifier) RequestArrived(r *ServiceRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, r.ID)
}

func (m *MockNotifier) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}

func (m *MockNotifier) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockSynthesizer records playback for tone tests
type MockSynthesizer struct {
	mu       sync.Mutex
	Played   []Pattern
	Vibrated [][]int
	done     chan struct{}
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{done: make(chan struct{}, 16)}
}

func (m *MockSynthesizer) Play(p Pattern, volume int) {
	m.mu.Lock()
	m.Played = append(m.Played, p)
	m.mu.Unlock()
	m.done <- struct{}{}
}

func (m *MockSynthesizer) Vibrate(cadence []int) {
	m.mu.Lock()
	m.Vibrated = append(m.Vibrated, cadence)
	m.mu.Unlock()
	m.done <- struct{}{}
}

// Wait blocks until the next playback callback arrives.
func (m *MockSynthesizer) Wait() <-chan struct{} {
	return m.done
}

// MockSessions is a fixed SessionSource
type MockSessions struct {
	Current *TerminalSession
}

func (m *MockSessions) Session() *TerminalSession {
	return m.Current
}
