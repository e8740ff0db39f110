package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartmenu-nz/pos-terminal/internal/pos"
	"github.com/smartmenu-nz/pos-terminal/pkg"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/requesttype"
	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// PublishDemo pushes a handful of sample changes onto a restaurant's
// feed so a terminal can be exercised without the full order pipeline.
// Changes go through JetStream so a terminal attaching later still sees
// them.
func PublishDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	restaurantID, _ := config.GetString("restaurant.id")
	if restaurantID == "" {
		restaurantID = "demo-restaurant"
	}

	topic := event.ChangeTopic(restaurantID)
	stream, err := pkg.NewChangeStream(pkg.ChangeStreamConfig{
		URL:          natsURL,
		StreamName:   "POS_CHANGES",
		Topic:        event.ChangeTopicPrefix + ">",
		ConsumerName: "posutil",
		MaxAge:       24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("connect change stream: %w", err)
	}
	defer stream.Close()

	logger.Infof("Publishing demo changes to %s", topic)

	now := time.Now()
	orders := []pos.Order{
		{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			ServiceType:  pos.ServiceDineIn,
			Status:       orderstatus.Statuses.Pending.Code(),
			TableNo:      "5",
			Items: []pos.OrderItem{
				{Name: "Pad Thai", Quantity: 2, UnitPrice: decimal.NewFromFloat(18.50), Notes: "no peanuts"},
				{Name: "Green Curry", Quantity: 1, UnitPrice: decimal.NewFromFloat(21.00), SelectedVariant: "Large"},
			},
			TotalPrice: decimal.NewFromFloat(58.00),
			Subtotal:   decimal.NewFromFloat(58.00),
			CreatedAt:  now,
		},
		{
			ID:              uuid.New(),
			RestaurantID:    restaurantID,
			ServiceType:     pos.ServicePickup,
			Status:          orderstatus.Statuses.PendingPayment.Code(),
			PaymentMethod:   pos.PaymentBankTransfer,
			PaymentSlipURL:  "https://example.com/slips/demo.jpg",
			CustomerName:    "Alex",
			CustomerPhone:   "021 000 0000",
			Items:           []pos.OrderItem{{Name: "Spring Rolls", Quantity: 3, UnitPrice: decimal.NewFromFloat(8.90)}},
			TotalPrice:      decimal.NewFromFloat(26.70),
			Subtotal:        decimal.NewFromFloat(26.70),
			SurchargeAmount: decimal.Decimal{},
			CreatedAt:       now,
		},
	}

	for _, o := range orders {
		if err := publish(ctx, stream, topic, event.OpInsert, event.EntityOrder, o); err != nil {
			return err
		}
	}

	request := pos.ServiceRequest{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		TableNo:      "5",
		RequestType:  requesttype.Types.CallWaiter.Code(),
		Status:       requesttype.StatusPending,
		CreatedAt:    now,
	}
	if err := publish(ctx, stream, topic, event.OpInsert, event.EntityServiceRequest, request); err != nil {
		return err
	}

	return nil
}

func publish(ctx context.Context, stream *pkg.ChangeStream, topic, op, entity string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ev := event.ChangeEvent{
		Operation:  op,
		Entity:     entity,
		OccurredAt: time.Now(),
		Payload:    data,
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}

	return stream.Publish(ctx, topic, msg)
}
