package pos

import (
	"context"

	aqm "github.com/appetiteclub/apt"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/requesttype"
)

// Refresher rebuilds the board from an authoritative fetch. It runs at
// startup and after every feed reconnect, so anything missed while
// disconnected is recovered wholesale.
type Refresher struct {
	backend      Backend
	board        *Board
	restaurantID string
	log          aqm.Logger
}

func NewRefresher(backend Backend, board *Board, restaurantID string, logger aqm.Logger) *Refresher {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Refresher{
		backend:      backend,
		board:        board,
		restaurantID: restaurantID,
		log:          logger,
	}
}

// Refresh fetches every active order and open service request and
// replaces the board contents with the result.
func (r *Refresher) Refresh(ctx context.Context) error {
	statuses := make([]string, 0, len(orderstatus.Active))
	for _, s := range orderstatus.Active {
		statuses = append(statuses, s.Code())
	}

	orders, err := r.backend.ListOrders(ctx, r.restaurantID, statuses)
	if err != nil {
		return err
	}

	requests, err := r.backend.ListServiceRequests(ctx, r.restaurantID,
		[]string{requesttype.StatusPending, requesttype.StatusAcknowledged})
	if err != nil {
		return err
	}

	r.board.Seed(orders, requests)
	r.log.Infof("board refreshed: %d orders, %d requests", len(orders), len(requests))
	return nil
}
