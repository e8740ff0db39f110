package pos

import (
	"context"

	"github.com/google/uuid"
)

// Backend is the authoritative order store and transition authority. Every
// mutation is a single idempotent request; the backend re-validates the
// expected current status (compare-and-swap) and ErrPrecondition surfaces
// when a sibling terminal won the race.
type Backend interface {
	ListOrders(ctx context.Context, restaurantID string, statuses []string) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus, expectedStatus, reason string) (*Order, error)
	Void(ctx context.Context, id uuid.UUID, reason, voidedBy string) error
	SetEstimatedTime(ctx context.Context, id uuid.UUID, minutes int) error

	PaymentStatus(ctx context.Context, intentRef string) (string, error)

	ListServiceRequests(ctx context.Context, restaurantID string, statuses []string) ([]ServiceRequest, error)
	UpdateServiceRequest(ctx context.Context, id uuid.UUID, status, staffID string) (*ServiceRequest, error)

	Profile(ctx context.Context, restaurantID string) (*RestaurantProfile, error)
}

// TicketPrinter dispatches a rendered document to a physical printer. The
// device itself is an external collaborator; implementations may spool,
// forward over the network, or just log.
type TicketPrinter interface {
	Print(ctx context.Context, doc string) error
}
