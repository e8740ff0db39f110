package commands

import (
	"context"
	"time"

	aqm "github.com/appetiteclub/apt"

	"github.com/smartmenu-nz/pos-terminal/internal/pos"
)

// WriteSession drops a demo staff session file so a terminal can boot
// signed-in during development.
func WriteSession(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	path, _ := config.GetString("session.path")
	if path == "" {
		path = "data/session.json"
	}

	restaurantID, _ := config.GetString("restaurant.id")
	if restaurantID == "" {
		restaurantID = "demo-restaurant"
	}

	session := &pos.TerminalSession{
		StaffID:        "demo-staff",
		StaffName:      "Demo Staff",
		Role:           "manager",
		RestaurantID:   restaurantID,
		RestaurantName: "Demo Restaurant",
		Theme:          "dark",
		Expires:        time.Now().Add(12 * time.Hour).UnixMilli(),
	}

	if err := pos.SaveSession(path, session); err != nil {
		return err
	}

	logger.Infof("Session for %s written to %s", session.StaffName, path)
	return nil
}
