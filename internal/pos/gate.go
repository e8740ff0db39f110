package pos

import (
	"context"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
)

// Signal is the gate's reading of the payment evidence for one order.
type Signal string

const (
	// SignalApproved means the processor confirmed the charge.
	SignalApproved Signal = "succeeded"
	// SignalRejectEligible means the processor reported the payment failed
	// or was canceled. Approval is blocked.
	SignalRejectEligible Signal = "failed"
	// SignalPending means the processor is still working, or a transfer
	// slip exists awaiting human inspection. Approval needs an override.
	SignalPending Signal = "pending"
	// SignalUnknown means no authoritative data could be obtained. Not a
	// failure; approval needs an override.
	SignalUnknown Signal = "unknown"
)

// MapProcessorStatus translates the card processor's status vocabulary
// into a gate signal.
func MapProcessorStatus(status string) Signal {
	switch status {
	case "succeeded":
		return SignalApproved
	case "requires_payment_method", "canceled":
		return SignalRejectEligible
	case "processing", "requires_action":
		return SignalPending
	default:
		return SignalUnknown
	}
}

// PaymentReview is what the gate shows the operator before a decision.
type PaymentReview struct {
	OrderID       uuid.UUID `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	Signal        Signal    `json:"signal"`
	SlipURL       string    `json:"slip_url,omitempty"`
	Warning       string    `json:"warning,omitempty"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}

// PaymentGate decides whether a pending_payment order may be promoted to
// the kitchen-visible queue or must be rejected. Approval prints exactly
// one original kitchen ticket; both actions are one-shot per order.
type PaymentGate struct {
	board   *Board
	backend Backend
	printer TicketPrinter
	logger  aqm.Logger
}

func NewPaymentGate(board *Board, backend Backend, printer TicketPrinter, logger aqm.Logger) *PaymentGate {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &PaymentGate{
		board:   board,
		backend: backend,
		printer: printer,
		logger:  logger,
	}
}

// Review gathers the payment evidence for an order awaiting verification.
// It never mutates anything; ambiguity is reported, not resolved.
func (g *PaymentGate) Review(ctx context.Context, orderID uuid.UUID) (*PaymentReview, error) {
	o := g.board.Get(orderID)
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != orderstatus.Statuses.PendingPayment.Name {
		return nil, ErrAlreadyDecided
	}

	review := &PaymentReview{
		OrderID:       o.ID,
		PaymentMethod: o.PaymentMethod,
		ReviewedAt:    time.Now().UTC(),
	}

	switch o.PaymentMethod {
	case PaymentCard:
		if o.PaymentIntentID == "" {
			review.Signal = SignalUnknown
			review.Warning = "no payment reference on order"
			return review, nil
		}
		status, err := g.backend.PaymentStatus(ctx, o.PaymentIntentID)
		if err != nil {
			// Could not reach the processor. That is ambiguity, not failure.
			g.logger.Errorf("payment status query failed for %s: %v", o.ID, err)
			review.Signal = SignalUnknown
			review.Warning = "unable to verify with payment processor"
			return review, nil
		}
		review.Signal = MapProcessorStatus(status)
	case PaymentBankTransfer:
		review.SlipURL = o.PaymentSlipURL
		if o.PaymentSlipURL == "" {
			review.Signal = SignalUnknown
			review.Warning = "no transfer slip uploaded"
		} else {
			review.Signal = SignalPending
		}
	default:
		review.Signal = SignalUnknown
	}

	return review, nil
}

// Approve promotes pending_payment -> pending and prints the original
// kitchen ticket, the first moment the order becomes actionable in the
// kitchen. Ambiguous signals require override=true; a failed signal can
// never be approved. Re-invoking after the order left pending_payment is
// an error, never a duplicate print.
func (g *PaymentGate) Approve(ctx context.Context, orderID uuid.UUID, override bool) (*Order, error) {
	o := g.board.Get(orderID)
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != orderstatus.Statuses.PendingPayment.Name {
		return nil, ErrAlreadyDecided
	}

	review, err := g.Review(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch review.Signal {
	case SignalRejectEligible:
		return nil, ErrPaymentFailed
	case SignalPending, SignalUnknown:
		if !override {
			return nil, ErrOverrideRequired
		}
		g.logger.Info("payment approved by operator override",
			"order_id", o.ID, "signal", string(review.Signal))
	}

	updated, err := g.backend.UpdateStatus(ctx, o.ID,
		orderstatus.Statuses.Pending.Name,
		orderstatus.Statuses.PendingPayment.Name,
		"")
	if err != nil {
		return nil, err
	}
	if updated == nil {
		updated = o
		updated.Status = orderstatus.Statuses.Pending.Name
	}

	// Promotion is never applied optimistically; the feed echo moves the
	// board so an unpaid order can never be exposed by a local guess.

	if g.printer != nil {
		ticket := KitchenTicket(updated, time.Now())
		if err := g.printer.Print(ctx, ticket); err != nil {
			g.logger.Errorf("kitchen ticket print failed for %s: %v", o.ID, err)
		}
	}

	return updated, nil
}

// Reject cancels a pending_payment order with the fixed audit reason.
func (g *PaymentGate) Reject(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o := g.board.Get(orderID)
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != orderstatus.Statuses.PendingPayment.Name {
		return nil, ErrAlreadyDecided
	}

	updated, err := g.backend.UpdateStatus(ctx, o.ID,
		orderstatus.Statuses.Cancelled.Name,
		orderstatus.Statuses.PendingPayment.Name,
		"payment_rejected")
	if err != nil {
		return nil, err
	}

	// Cancellation is safe to apply locally: it removes, never exposes.
	if updated != nil {
		g.board.SetLocal(updated)
	} else {
		o.Status = orderstatus.Statuses.Cancelled.Name
		g.board.SetLocal(o)
	}

	return updated, nil
}
