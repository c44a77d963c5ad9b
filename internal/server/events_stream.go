package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/events"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

// Stream tuning.
const (
	streamBufferSize  = 100
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 5 * time.Second
)

// Frame formats accepted in ?format=.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// EventsStreamHandler streams bus events to websocket clients.
type EventsStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_stream").Logger(),
	}
}

// streamFrame is the wire shape of every message sent to a client.
type streamFrame struct {
	Type      string                 `json:"type" msgpack:"type"`
	Module    string                 `json:"module,omitempty" msgpack:"module,omitempty"`
	Timestamp string                 `json:"timestamp" msgpack:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
}

// ServeHTTP handles GET /api/events/ws.
// Query parameters: types (comma-separated event types, default all) and
// format (json or msgpack, default json).
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatMsgpack {
		http.Error(w, "format must be json or msgpack", http.StatusBadRequest)
		return
	}

	types, err := parseEventTypes(r.URL.Query().Get("types"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	eventChan := make(chan *events.Event, streamBufferSize)
	handler := func(event *events.Event) {
		// Never block the publisher.
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	// Subscribed before the handshake: nothing emitted after connect is lost.
	ids := make([]events.SubscriptionID, 0, len(types))
	for _, t := range types {
		ids = append(ids, h.eventBus.Subscribe(t, handler))
	}
	defer func() {
		for _, id := range ids {
			h.eventBus.Unsubscribe(id)
		}
	}()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// Clients only listen; CloseRead also handles their close frames.
	ctx := conn.CloseRead(r.Context())

	h.log.Info().
		Str("format", format).
		Int("types", len(types)).
		Msg("Client connected to event stream")

	if err := h.send(ctx, conn, format, streamFrame{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			frame := streamFrame{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}
			if err := h.send(ctx, conn, format, frame); err != nil {
				h.log.Debug().Err(err).Msg("Failed to write event, closing stream")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed, closing stream")
				return
			}
		}
	}
}

func (h *EventsStreamHandler) send(ctx context.Context, conn *websocket.Conn, format string, frame streamFrame) error {
	var (
		payload []byte
		kind    websocket.MessageType
		err     error
	)
	if format == FormatMsgpack {
		payload, err = msgpack.Marshal(frame)
		kind = websocket.MessageBinary
	} else {
		payload, err = json.Marshal(frame)
		kind = websocket.MessageText
	}
	if err != nil {
		h.log.Error().Err(err).Str("event_type", frame.Type).Msg("Failed to encode event")
		return nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, kind, payload)
}

// parseEventTypes resolves a types filter; empty means every known type.
func parseEventTypes(filter string) ([]events.EventType, error) {
	if strings.TrimSpace(filter) == "" {
		return events.AllEventTypes, nil
	}

	known := make(map[events.EventType]bool, len(events.AllEventTypes))
	for _, t := range events.AllEventTypes {
		known[t] = true
	}

	seen := make(map[events.EventType]bool)
	var types []events.EventType
	for _, raw := range strings.Split(filter, ",") {
		t := events.EventType(strings.ToUpper(strings.TrimSpace(raw)))
		if t == "" || seen[t] {
			continue
		}
		if !known[t] {
			return nil, fmt.Errorf("unknown event type %s", t)
		}
		seen[t] = true
		types = append(types, t)
	}
	return types, nil
}
