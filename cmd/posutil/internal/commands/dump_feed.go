package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/smartmenu-nz/pos-terminal/pkg"
	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// DumpFeed replays the retained change feed and prints one line per
// message, oldest first. Handy for checking what a late-starting terminal
// would see.
func DumpFeed(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	stream, err := pkg.NewChangeStream(pkg.ChangeStreamConfig{
		URL:          natsURL,
		StreamName:   "POS_CHANGES",
		Topic:        event.ChangeTopicPrefix + ">",
		ConsumerName: "posutil-dump",
		MaxAge:       24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("connect change stream: %w", err)
	}
	defer stream.Close()

	msgs, err := stream.Fetch(ctx, 0)
	if err != nil {
		return fmt.Errorf("fetch retained changes: %w", err)
	}

	for _, msg := range msgs {
		fmt.Println(formatStreamMessage(msg))
	}
	logger.Infof("%d retained changes", len(msgs))
	return nil
}

func formatStreamMessage(msg events.StreamMessage) string {
	var ev event.ChangeEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return fmt.Sprintf("seq=%d <%d bytes, not a change event>", msg.Sequence, len(msg.Data))
	}
	ts := time.Unix(0, msg.Timestamp).Format("02/01/2006 15:04:05")
	return fmt.Sprintf("seq=%d %s %s %s %d bytes", msg.Sequence, ts, ev.Operation, ev.Entity, len(ev.Payload))
}
