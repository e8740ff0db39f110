package pos

import (
	"fmt"
	"strings"

	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
)

// Trigger names for the lifecycle edges, used in logs and audit output.
const (
	TriggerVerifyPayment = "verify_payment"
	TriggerRejectPayment = "reject_payment"
	TriggerConfirm       = "confirm"
	TriggerStartCooking  = "start_cooking"
	TriggerMarkReady     = "mark_ready"
	TriggerComplete      = "complete"
	TriggerVoid          = "void"
)

// forward holds the happy-path edges. Void and cancel are handled
// separately: they are reachable from any non-terminal state.
var forward = map[string]string{
	orderstatus.Statuses.PendingPayment.Name: orderstatus.Statuses.Pending.Name,
	orderstatus.Statuses.Pending.Name:        orderstatus.Statuses.Confirmed.Name,
	orderstatus.Statuses.Confirmed.Name:      orderstatus.Statuses.Preparing.Name,
	orderstatus.Statuses.Preparing.Name:      orderstatus.Statuses.Ready.Name,
	orderstatus.Statuses.Ready.Name:          orderstatus.Statuses.Completed.Name,
}

// Validate reports whether from -> to is a legal lifecycle edge. It never
// touches the network; callers check legality before issuing the backend
// call, and the backend re-checks with a compare-and-swap on its side.
func Validate(from, to string) error {
	if orderstatus.ByName(from) == nil {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, from)
	}
	if orderstatus.ByName(to) == nil {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}
	if orderstatus.Terminal(from) {
		return fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, from)
	}
	switch to {
	case orderstatus.Statuses.Cancelled.Name, orderstatus.Statuses.Voided.Name:
		return nil
	}
	if forward[from] != to {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// ReasonRequired reports whether a transition to the given status must
// carry a non-empty reason (void and cancel record an audit trail).
func ReasonRequired(to string) bool {
	return to == orderstatus.Statuses.Cancelled.Name || to == orderstatus.Statuses.Voided.Name
}

// ValidateReason enforces the mandatory-reason rule before any network
// call. Reasons are opaque text; the only validation is non-emptiness.
func ValidateReason(to, reason string) error {
	if ReasonRequired(to) && strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// TriggerFor names the edge for audit logs. Cancel from pending_payment is
// a payment rejection rather than a generic void.
func TriggerFor(from, to string) string {
	switch to {
	case orderstatus.Statuses.Cancelled.Name:
		if from == orderstatus.Statuses.PendingPayment.Name {
			return TriggerRejectPayment
		}
		return TriggerVoid
	case orderstatus.Statuses.Voided.Name:
		return TriggerVoid
	case orderstatus.Statuses.Pending.Name:
		return TriggerVerifyPayment
	case orderstatus.Statuses.Confirmed.Name:
		return TriggerConfirm
	case orderstatus.Statuses.Preparing.Name:
		return TriggerStartCooking
	case orderstatus.Statuses.Ready.Name:
		return TriggerMarkReady
	case orderstatus.Statuses.Completed.Name:
		return TriggerComplete
	}
	return ""
}
