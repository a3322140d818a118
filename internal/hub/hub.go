package hub

import (
	"encoding/json"
	"log/slog"

	"fleetops/internal/domain"
)

// Hub is the broadcast hub: it accepts domain events and fans them out to
// the connections subscribed to the event's tenant and group. Delivery is
// best-effort and fire-and-forget per connection; one slow or dead
// connection never blocks the others and never fails the originating
// command.
type Hub struct {
	registry *Registry
	metrics  *Metrics
	logger   *slog.Logger
}

// New creates a hub over the given registry. metrics may be nil.
func New(registry *Registry, metrics *Metrics, logger *slog.Logger) *Hub {
	return &Hub{registry: registry, metrics: metrics, logger: logger}
}

var _ domain.Publisher = (*Hub)(nil)

// Publish serializes the event envelope once and enqueues it on every
// member connection of the event's tenant+group. Per-connection delivery
// order follows publish order; a connection with a full queue or one that
// disconnected mid-delivery drops the event silently.
func (h *Hub) Publish(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal event", "type", event.Type, "error", err)
		return
	}

	members := h.registry.GroupMembers(event.TenantID, event.Group)
	for _, c := range members {
		if c.enqueue(payload) {
			if h.metrics != nil {
				h.metrics.deliveredTotal.WithLabelValues(event.Type).Inc()
			}
			continue
		}
		if h.metrics != nil {
			h.metrics.droppedTotal.WithLabelValues("queue_full_or_closed").Inc()
		}
		h.logger.Debug("dropped event",
			"type", event.Type, "tenant", event.TenantID, "conn", c.ID())
	}
}
