package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	PendingPayment Status
	Pending        Status
	Confirmed      Status
	Preparing      Status
	Ready          Status
	Completed      Status
	Cancelled      Status
	Voided         Status
}

var Statuses = Enum{
	PendingPayment: Status{Name: "pending_payment"},
	Pending:        Status{Name: "pending"},
	Confirmed:      Status{Name: "confirmed"},
	Preparing:      Status{Name: "preparing"},
	Ready:          Status{Name: "ready"},
	Completed:      Status{Name: "completed"},
	Cancelled:      Status{Name: "cancelled"},
	Voided:         Status{Name: "voided"},
}

var All = []Status{
	Statuses.PendingPayment,
	Statuses.Pending,
	Statuses.Confirmed,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Completed,
	Statuses.Cancelled,
	Statuses.Voided,
}

// Active lists the statuses shown on staff boards, in lifecycle order.
var Active = []Status{
	Statuses.PendingPayment,
	Statuses.Pending,
	Statuses.Confirmed,
	Statuses.Preparing,
	Statuses.Ready,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Terminal reports whether a status code ends the order lifecycle.
// Terminal orders are excluded from every active view.
func Terminal(code string) bool {
	switch code {
	case Statuses.Completed.Name, Statuses.Cancelled.Name, Statuses.Voided.Name:
		return true
	}
	return false
}
