package pos

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/pkg/enums/orderstatus"
	"github.com/smartmenu-nz/pos-terminal/pkg/enums/requesttype"
)

const MaxBodyBytes = 1 << 20

// SessionSource yields the current terminal session for auth checks.
type SessionSource interface {
	Session() *TerminalSession
}

type Handler struct {
	board     *Board
	backend   Backend
	gate      *PaymentGate
	refresher *Refresher
	sessions  SessionSource
	sse       *SSEHandler
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
}

func NewHandler(board *Board, backend Backend, gate *PaymentGate, refresher *Refresher, sessions SessionSource, sse *SSEHandler, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		board:     board,
		backend:   backend,
		gate:      gate,
		refresher: refresher,
		sessions:  sessions,
		sse:       sse,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/confirm", h.ConfirmOrder)
		r.Patch("/{id}/start", h.StartOrder)
		r.Patch("/{id}/ready", h.ReadyOrder)
		r.Patch("/{id}/complete", h.CompleteOrder)
		r.Post("/{id}/void", h.VoidOrder)
		r.Get("/{id}/payment", h.ReviewPayment)
		r.Post("/{id}/payment/approve", h.ApprovePayment)
		r.Post("/{id}/payment/reject", h.RejectPayment)
		r.Put("/{id}/estimated-time", h.SetEstimatedTime)
		r.Get("/{id}/receipt", h.PrintReceipt)
	})
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.ListRequests)
		r.Patch("/{id}/acknowledge", h.AcknowledgeRequest)
		r.Patch("/{id}/complete", h.CompleteRequest)
	})
	r.Post("/refresh", h.Refresh)
	if h.sse != nil {
		r.Method(http.MethodGet, "/events", h.sse)
	}
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// requireSession refuses mutations once the cached staff session has
// lapsed. Reads stay available so the board remains visible while a
// manager re-authenticates.
func (h *Handler) requireSession(w http.ResponseWriter) *TerminalSession {
	s := h.sessions.Session()
	if !s.Valid(time.Now()) {
		aqm.RespondError(w, http.StatusUnauthorized, "Session expired")
		return nil
	}
	return s
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"orders": h.board.Orders(),
	}, nil)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	aqm.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.ConfirmOrder", orderstatus.Statuses.Confirmed.Code(), "")
}

func (h *Handler) ReadyOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.ReadyOrder", orderstatus.Statuses.Ready.Code(), "")
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.CompleteOrder", orderstatus.Statuses.Completed.Code(), "")
}

// transition runs one forward step: validate locally against the board's
// copy, then hand the compare-and-swap to the backend with the observed
// status as the expected one. Local validation catches stale taps
// cheaply; the backend check is the one that counts.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op, newStatus, reason string) {
	w, r, finish := h.tlm.Start(w, r, op)
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if h.requireSession(w) == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if err := Validate(order.Status, newStatus); err != nil {
		aqm.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err := ValidateReason(newStatus, reason); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.backend.UpdateStatus(ctx, id, newStatus, order.Status, reason)
	if err != nil {
		h.respondTransitionError(w, log, err)
		return
	}

	h.board.SetLocal(updated)
	aqm.Respond(w, http.StatusOK, updated, nil)
}

func (h *Handler) respondTransitionError(w http.ResponseWriter, log aqm.Logger, err error) {
	switch {
	case errors.Is(err, ErrPrecondition):
		aqm.RespondError(w, http.StatusConflict, ErrPrecondition.Error())
	case errors.Is(err, ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
	default:
		log.Errorf("cannot update order status: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
	}
}

// StartOrder moves a confirmed order to preparing, optionally stamping a
// cook-time estimate in the same motion.
func (h *Handler) StartOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.StartOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if h.requireSession(w) == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if err := Validate(order.Status, orderstatus.Statuses.Preparing.Code()); err != nil {
		aqm.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	var payload struct {
		EstimatedMinutes int `json:"estimated_minutes"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	updated, err := h.backend.UpdateStatus(ctx, id, orderstatus.Statuses.Preparing.Code(), order.Status, "")
	if err != nil {
		h.respondTransitionError(w, log, err)
		return
	}

	if payload.EstimatedMinutes > 0 {
		if err := h.backend.SetEstimatedTime(ctx, id, payload.EstimatedMinutes); err != nil {
			log.Errorf("cannot set estimated time: %v", err)
		} else {
			now := time.Now()
			updated.EstimatedMinutes = &payload.EstimatedMinutes
			updated.CookingStartedAt = &now
		}
	}

	h.board.SetLocal(updated)
	aqm.Respond(w, http.StatusOK, updated, nil)
}

func (h *Handler) VoidOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.VoidOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	session := h.requireSession(w)
	if session == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	voided := orderstatus.Statuses.Voided.Code()
	if err := Validate(order.Status, voided); err != nil {
		aqm.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err := ValidateReason(voided, payload.Reason); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.backend.Void(ctx, id, payload.Reason, session.StaffID); err != nil {
		h.respondTransitionError(w, log, err)
		return
	}

	order.Status = voided
	order.VoidReason = payload.Reason
	h.board.SetLocal(order)

	aqm.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ReviewPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReviewPayment")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	review, err := h.gate.Review(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Errorf("cannot review payment: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not review payment")
		return
	}

	aqm.Respond(w, http.StatusOK, review, nil)
}

func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ApprovePayment")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if h.requireSession(w) == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Override bool `json:"override"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	updated, err := h.gate.Approve(ctx, id, payload.Override)
	if err != nil {
		h.respondGateError(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, updated, nil)
}

func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RejectPayment")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if h.requireSession(w) == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	updated, err := h.gate.Reject(ctx, id)
	if err != nil {
		h.respondGateError(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, updated, nil)
}

func (h *Handler) respondGateError(w http.ResponseWriter, log aqm.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrPaymentFailed),
		errors.Is(err, ErrOverrideRequired),
		errors.Is(err, ErrPrecondition):
		aqm.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Errorf("payment decision failed: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not process payment decision")
	}
}

func (h *Handler) SetEstimatedTime(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetEstimatedTime")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if h.requireSession(w) == nil {
		return
	}

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.Status != orderstatus.Statuses.Preparing.Code() {
		aqm.RespondError(w, http.StatusConflict, "estimated time can only be set while preparing")
		return
	}

	var payload struct {
		EstimatedMinutes int `json:"estimated_minutes"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.EstimatedMinutes <= 0 {
		aqm.RespondError(w, http.StatusBadRequest, "estimated_minutes must be positive")
		return
	}

	if err := h.backend.SetEstimatedTime(ctx, id, payload.EstimatedMinutes); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Errorf("cannot set estimated time: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not set estimated time")
		return
	}

	now := time.Now()
	order.EstimatedMinutes = &payload.EstimatedMinutes
	order.CookingStartedAt = &now
	h.board.SetLocal(order)

	aqm.Respond(w, http.StatusOK, order, nil)
}

// PrintReceipt renders a document for the requested mode.
// mode=kitchen gives the preparation ticket; mode=customer (default)
// gives the tax invoice; copy=true watermarks a reprint.
func (h *Handler) PrintReceipt(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PrintReceipt")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order := h.board.Get(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var doc string
	switch r.URL.Query().Get("mode") {
	case "kitchen":
		doc = KitchenTicket(order, time.Now())
	default:
		profile, err := h.backend.Profile(ctx, order.RestaurantID)
		if err != nil {
			log.Errorf("cannot load restaurant profile: %v", err)
			profile = nil
		}
		doc = CustomerReceipt(order, profile, r.URL.Query().Get("copy") == "true")
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"document": doc,
	}, nil)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListRequests")
	defer finish()

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"requests": h.board.Requests(),
	}, nil)
}

func (h *Handler) AcknowledgeRequest(w http.ResponseWriter, r *http.Request) {
	h.updateRequest(w, r, "Handler.AcknowledgeRequest", requesttype.StatusAcknowledged)
}

func (h *Handler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	h.updateRequest(w, r, "Handler.CompleteRequest", requesttype.StatusCompleted)
}

func (h *Handler) updateRequest(w http.ResponseWriter, r *http.Request, op, newStatus string) {
	w, r, finish := h.tlm.Start(w, r, op)
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	session := h.requireSession(w)
	if session == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	current := h.board.GetRequest(id)
	if current == nil {
		aqm.RespondError(w, http.StatusNotFound, "Service request not found")
		return
	}

	// pending -> acknowledged -> completed, one step at a time
	valid := (current.Status == requesttype.StatusPending && newStatus == requesttype.StatusAcknowledged) ||
		(current.Status == requesttype.StatusAcknowledged && newStatus == requesttype.StatusCompleted)
	if !valid {
		aqm.RespondError(w, http.StatusConflict, "illegal service request transition")
		return
	}

	updated, err := h.backend.UpdateServiceRequest(ctx, id, newStatus, session.StaffID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Service request not found")
			return
		}
		log.Errorf("cannot update service request: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update service request")
		return
	}

	h.board.SetRequestLocal(updated)
	aqm.Respond(w, http.StatusOK, updated, nil)
}

// Refresh forces a full authoritative resync of the board.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Refresh")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if err := h.refresher.Refresh(ctx); err != nil {
		log.Errorf("cannot refresh board: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not refresh board")
		return
	}

	aqm.RespondSuccess(w, map[string]interface{}{
		"orders":   len(h.board.Orders()),
		"requests": len(h.board.Requests()),
	})
}
