package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/middleware"
)

const defaultKeepAlive = 25 * time.Second

// EventsHandler streams order status changes as server-sent events.
type EventsHandler struct {
	hub       *events.Hub
	logger    *zap.Logger
	keepAlive time.Duration
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(hub *events.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger, keepAlive: defaultKeepAlive}
}

// Stream holds the connection open and writes one "status" event per order
// status change visible to the caller. The route requires a bearer token, which
// browser EventSource cannot send, so it serves header-capable clients such as
// pkg/client.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(eventFilter(identity))
	logger := h.logger.With(zap.String("user_id", identity.UserID.String()))
	keepAlive := h.keepAlive

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		if _, err := fmt.Fprint(w, "retry: 5000\n\n"); err != nil || w.Flush() != nil {
			return
		}

		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					logger.Debug("event stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, ev events.StatusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// eventFilter lets admins see every event and users only their own orders.
func eventFilter(identity middleware.Identity) func(events.StatusEvent) bool {
	if identity.IsAdmin() {
		return nil
	}
	userID := identity.UserID.String()
	return func(ev events.StatusEvent) bool {
		return ev.UserID == userID
	}
}
