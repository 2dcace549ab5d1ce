// Package notify delivers handoff notifications to users when work lands
// on their queue. Delivery is best-effort: callers invoke Dispatch after the
// transition has committed and log failures instead of propagating them.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

// Message describes one handoff event to deliver to a single recipient.
type Message struct {
	RecipientID   uuid.UUID
	InstructionID uuid.UUID
	Action        domain.Action
	Subject       string
}

// Dispatcher sends handoff messages. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// LogDispatcher writes notifications to the structured log instead of
// delivering them externally. It stands in for an SMTP or push channel.
type LogDispatcher struct {
	log *slog.Logger
}

// NewLogDispatcher creates a dispatcher that records messages via log.
func NewLogDispatcher(log *slog.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.With("component", "notify")}
}

// Dispatch logs the message. It never fails.
func (d *LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.log.InfoContext(ctx, "notification dispatched",
		slog.String("recipient_id", msg.RecipientID.String()),
		slog.String("instruction_id", msg.InstructionID.String()),
		slog.String("action", msg.Action.String()),
		slog.String("subject", msg.Subject),
	)
	return nil
}
