package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/barratec/barra-api/internal/infrastructure/events"
)

// heartbeat para que los proxies no corten la conexión SSE por inactividad.
const sseHeartbeat = 25 * time.Second

// EventsHandler expone los eventos de inventario por server-sent events.
type EventsHandler struct {
	broadcaster *events.Broadcaster
}

// NewEventsHandler construye el handler.
func NewEventsHandler(broadcaster *events.Broadcaster) *EventsHandler {
	return &EventsHandler{broadcaster: broadcaster}
}

// Stream godoc
// @Summary      Stream de eventos de inventario (SSE)
// @Description  Emite stock.changed, movement.created y process.changed a medida que se confirman transacciones.
// @Tags         events
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200  "stream"
// @Router       /api/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch, cancel := h.broadcaster.Subscribe()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(sseHeartbeat)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
				if err := w.Flush(); err != nil {
					// el cliente cortó; el defer libera la suscripción
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
