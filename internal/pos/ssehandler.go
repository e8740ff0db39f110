package pos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/pkg/event"
)

const subscriberBuffer = 100

type sseEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SSEHandler streams board changes and alert notifications to attached
// terminal screens over Server-Sent Events.
type SSEHandler struct {
	mu          sync.Mutex
	subscribers map[string]chan sseEnvelope
	logger      aqm.Logger
}

func NewSSEHandler(logger aqm.Logger) *SSEHandler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &SSEHandler{
		subscribers: make(map[string]chan sseEnvelope),
		logger:      logger,
	}
}

func (h *SSEHandler) subscribe(id string) <-chan sseEnvelope {
	ch := make(chan sseEnvelope, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()
	return ch
}

func (h *SSEHandler) unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish fans an event out to every attached screen. A subscriber whose
// buffer is full is skipped; it will catch up on its next full refresh.
func (h *SSEHandler) Publish(eventType string, data interface{}) {
	env := sseEnvelope{Type: eventType, Data: data}
	h.mu.Lock()
	for id, ch := range h.subscribers {
		select {
		case ch <- env:
		default:
			h.logger.Info("subscriber buffer full, dropping event", "subscriber_id", id, "type", eventType)
		}
	}
	h.mu.Unlock()
}

// ServeHTTP implements http.Handler for the SSE endpoint.
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID := uuid.New().String()
	h.logger.Info("new SSE connection", "subscriber_id", subscriberID)

	eventChan := h.subscribe(subscriberID)
	defer h.unsubscribe(subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case env, ok := <-eventChan:
			if !ok {
				return
			}

			data, err := json.Marshal(env.Data)
			if err != nil {
				h.logger.Error("cannot marshal SSE event", "type", env.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", env.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// OnFeedEvent forwards an applied feed change to the screens.
func (h *SSEHandler) OnFeedEvent(ev event.ChangeEvent) {
	h.Publish("change", ev)
}

// NotifyBridge turns board arrivals into an audible alert plus an SSE
// notification so the screen and the speaker stay in step.
type NotifyBridge struct {
	sse   *SSEHandler
	tones *Emitter
}

func NewNotifyBridge(sse *SSEHandler, tones *Emitter) *NotifyBridge {
	return &NotifyBridge{sse: sse, tones: tones}
}

func (n *NotifyBridge) OrderArrived(o *Order) {
	if n.tones != nil {
		n.tones.Emit(ToneOrder)
	}
	if n.sse != nil {
		n.sse.Publish("notify", map[string]interface{}{
			"kind":     string(ToneOrder),
			"order_id": o.ID,
		})
	}
}

func (n *NotifyBridge) RequestArrived(r *ServiceRequest) {
	if n.tones != nil {
		n.tones.Emit(ToneRequest)
	}
	if n.sse != nil {
		n.sse.Publish("notify", map[string]interface{}{
			"kind":       string(ToneRequest),
			"request_id": r.ID,
			"table_no":   r.TableNo,
		})
	}
}
