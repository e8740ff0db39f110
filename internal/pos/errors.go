package pos

import "errors"

var (
	// ErrNotFound means the order or request is not on this terminal's board.
	ErrNotFound = errors.New("not found on board")

	// ErrIllegalTransition means the requested status change has no edge in
	// the lifecycle table from the order's current status.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrReasonRequired is returned before any network call when a void or
	// reject is attempted without a non-empty reason.
	ErrReasonRequired = errors.New("reason is required")

	// ErrPrecondition means the backend rejected a transition because the
	// order already left the expected state. The terminal view is stale and
	// must be refreshed, not retried.
	ErrPrecondition = errors.New("order status changed, refresh required")

	// ErrAlreadyDecided means a payment approval or rejection was attempted
	// after the order already left pending_payment. One-shot actions are
	// never repeated.
	ErrAlreadyDecided = errors.New("payment already decided for order")

	// ErrPaymentFailed blocks approval while the processor reports the
	// payment as failed or canceled.
	ErrPaymentFailed = errors.New("payment reported failed by processor")

	// ErrOverrideRequired means the processor signal is ambiguous (pending
	// or unknown) and approval needs an explicit operator override.
	ErrOverrideRequired = errors.New("ambiguous payment status, operator override required")

	// ErrSessionExpired forces re-authentication of the terminal.
	ErrSessionExpired = errors.New("terminal session expired")
)
