package event

import (
	"encoding/json"
	"time"
)

const (
	// ChangeTopicPrefix is prepended to the restaurant id to form the
	// per-restaurant change feed subject.
	ChangeTopicPrefix = "pos.changes."

	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"

	EntityOrder          = "order"
	EntityServiceRequest = "service_request"
	EntityRestaurant     = "restaurant"
)

// ChangeTopic returns the feed subject for one restaurant.
func ChangeTopic(restaurantID string) string {
	return ChangeTopicPrefix + restaurantID
}

// ChangeEvent is one backend mutation pushed to subscribed terminals.
// Payload carries the full row for insert/update and at least the id for
// delete; terminals never merge, they replace.
type ChangeEvent struct {
	Operation  string          `json:"operation"`
	Entity     string          `json:"entity"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// DeletePayload is the minimal payload carried by delete events.
type DeletePayload struct {
	ID string `json:"id"`
}

// RestaurantSettings is the slice of a restaurant row terminals consume,
// presentation only (language and theme changes pass through to screens).
type RestaurantSettings struct {
	ID              string `json:"id"`
	PrimaryLanguage string `json:"primary_language,omitempty"`
	ThemeColor      string `json:"pos_theme_color,omitempty"`
}
