package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/port/broadcast"
)

var _ broadcast.Broadcaster = (*Hub)(nil)

// BroadcastEvent marshals a typed event and broadcasts it. Change events are
// routed by their project id.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	var projectID string
	switch ch := payload.(type) {
	case event.Change:
		projectID = ch.ProjectID
	case *event.Change:
		projectID = ch.ProjectID
	}

	h.Broadcast(ctx, projectID, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
