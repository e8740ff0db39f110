// Package feed consumes the restaurant's real-time change feed and keeps
// the local board synchronized with it.
package feed

import (
	"context"
	"encoding/json"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

// Applier receives decoded change events, typically the board.
type Applier interface {
	ApplyChange(ctx context.Context, ev event.ChangeEvent) error
}

// Client subscribes one terminal to its restaurant's change topic.
// Every (re)connect is followed by a full resync, so the board converges
// even when individual events were missed.
type Client struct {
	subscriber events.Subscriber
	topic      string
	applier    Applier
	resync     func(ctx context.Context) error
	onEvent    func(ev event.ChangeEvent)
	log        aqm.Logger
}

type Option func(*Client)

// WithOnEvent registers a hook invoked after each event is applied, used
// to fan changes out to attached screens.
func WithOnEvent(fn func(ev event.ChangeEvent)) Option {
	return func(c *Client) {
		c.onEvent = fn
	}
}

func NewClient(subscriber events.Subscriber, restaurantID string, applier Applier, resync func(ctx context.Context) error, logger aqm.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	c := &Client{
		subscriber: subscriber,
		topic:      event.ChangeTopic(restaurantID),
		applier:    applier,
		resync:     resync,
		log:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resyncs the board and then attaches to the live feed. A failed
// initial resync is logged, not fatal: the terminal still comes up and
// converges on the next refresh or reconnect.
func (c *Client) Start(ctx context.Context) error {
	if err := c.Resync(ctx); err != nil {
		c.log.Errorf("initial resync failed: %v", err)
	}

	if err := c.subscriber.Subscribe(ctx, c.topic, c.handle); err != nil {
		return err
	}

	c.log.Info("subscribed to change feed", "topic", c.topic)
	return nil
}

// Resync replays the authoritative state into the board. Safe to call at
// any time; also wired as the broker reconnect callback.
func (c *Client) Resync(ctx context.Context) error {
	if c.resync == nil {
		return nil
	}
	return c.resync(ctx)
}

// Stop detaches from the feed. The subscriber connection itself is owned
// by the caller and closed there.
func (c *Client) Stop(ctx context.Context) error {
	c.log.Info("change feed client stopped")
	return nil
}

func (c *Client) handle(ctx context.Context, msg []byte) error {
	var ev event.ChangeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		c.log.Errorf("cannot decode change event: %v", err)
		return err
	}

	if err := c.applier.ApplyChange(ctx, ev); err != nil {
		c.log.Errorf("cannot apply change event: %v", err)
		return err
	}

	if c.onEvent != nil {
		c.onEvent(ev)
	}
	return nil
}
