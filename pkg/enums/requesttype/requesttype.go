package requesttype

import (
	"strings"
)

type RequestType struct {
	Name string
}

func (t RequestType) Code() string {
	return t.Name
}

func (t RequestType) Label() string {
	parts := strings.Split(t.Name, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	CallWaiter   RequestType
	RequestSauce RequestType
	RequestWater RequestType
	RequestBill  RequestType
	Other        RequestType
}

var Types = Enum{
	CallWaiter:   RequestType{Name: "call_waiter"},
	RequestSauce: RequestType{Name: "request_sauce"},
	RequestWater: RequestType{Name: "request_water"},
	RequestBill:  RequestType{Name: "request_bill"},
	Other:        RequestType{Name: "other"},
}

var All = []RequestType{
	Types.CallWaiter,
	Types.RequestSauce,
	Types.RequestWater,
	Types.RequestBill,
	Types.Other,
}

// ByName returns the request type for a given name, or nil if not found
func ByName(name string) *RequestType {
	for _, t := range All {
		if t.Name == name {
			return &t
		}
	}
	return nil
}

// Request statuses. Requests are simpler than orders: a flat three step
// progression, completed removes the request from all active views.
const (
	StatusPending      = "pending"
	StatusAcknowledged = "acknowledged"
	StatusCompleted    = "completed"
)
