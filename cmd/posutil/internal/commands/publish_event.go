package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	aqm "github.com/appetiteclub/apt"

	"github.com/smartmenu-nz/pos-terminal/pkg"
	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// PublishEvent reads one change event as JSON from stdin and publishes it
// to a restaurant's feed over plain NATS. Unlike publish-demo there is no
// retention: this nudges terminals that are connected right now, which is
// what you want when poking at a live screen.
func PublishEvent(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	restaurantID, _ := config.GetString("restaurant.id")
	if restaurantID == "" {
		restaurantID = "demo-restaurant"
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read event from stdin: %w", err)
	}
	msg, err := encodeChangeEvent(raw, time.Now())
	if err != nil {
		return err
	}

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		return fmt.Errorf("connect NATS: %w", err)
	}
	defer publisher.Close()

	topic := event.ChangeTopic(restaurantID)
	if err := publisher.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	logger.Infof("Published change event to %s", topic)
	return nil
}

// encodeChangeEvent validates raw JSON as a change event and returns the
// canonical encoding, stamping occurred_at with now when absent.
func encodeChangeEvent(raw []byte, now time.Time) ([]byte, error) {
	var ev event.ChangeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode change event: %w", err)
	}

	switch ev.Operation {
	case event.OpInsert, event.OpUpdate, event.OpDelete:
	default:
		return nil, fmt.Errorf("unknown operation %q", ev.Operation)
	}
	switch ev.Entity {
	case event.EntityOrder, event.EntityServiceRequest, event.EntityRestaurant:
	default:
		return nil, fmt.Errorf("unknown entity %q", ev.Entity)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = now
	}

	return json.Marshal(ev)
}
