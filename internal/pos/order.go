package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderID = uuid.UUID
type RequestID = uuid.UUID

// Service types. Immutable after creation; they drive which identity
// fields are present and which receipt banner is printed.
const (
	ServiceDineIn   = "dine_in"
	ServicePickup   = "pickup"
	ServiceDelivery = "delivery"
)

// Payment methods.
const (
	PaymentCard          = "card"
	PaymentBankTransfer  = "bank_transfer"
	PaymentCashAtCounter = "cash_at_counter"
)

// Payment statuses, authoritative from the payment collaborator.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type OrderItem struct {
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SelectedVariant string          `json:"selected_variant,omitempty"`
	SelectedAddons  []string        `json:"selected_addons,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// LineTotal is the quantity-extended price for one item line.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID           OrderID `json:"id"`
	RestaurantID string  `json:"restaurant_id"`

	ServiceType string `json:"service_type"`
	Status      string `json:"status"`

	PaymentMethod   string `json:"payment_method,omitempty"`
	PaymentStatus   string `json:"payment_status,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	PaymentSlipURL  string `json:"payment_slip_url,omitempty"`

	TotalPrice      decimal.Decimal `json:"total_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	SurchargeAmount decimal.Decimal `json:"surcharge_amount"`

	Items []OrderItem `json:"items"`

	TableNo         string `json:"table_no,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`

	SpecialInstructions string `json:"special_instructions,omitempty"`

	// Set together, only while status = preparing. Re-setting restarts
	// the countdown from the new call time.
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	CookingStartedAt *time.Time `json:"cooking_started_at,omitempty"`

	VoidReason string `json:"void_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ShortID is the uppercase 8-char order reference printed on tickets.
func (o *Order) ShortID() string {
	s := o.ID.String()
	if len(s) > 8 {
		s = s[:8]
	}
	// UUID string form is lowercase hex
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

type ServiceRequest struct {
	ID           RequestID `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	TableNo      string    `json:"table_no"`
	RequestType  string    `json:"request_type"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"`

	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RestaurantProfile is the read-only business identity consumed by the
// customer receipt.
type RestaurantProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTNumber string `json:"gst_number,omitempty"`
	IRDNumber string `json:"ird_number,omitempty"`
}
