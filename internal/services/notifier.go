package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

type TicketNotifier interface {
	TicketCreated(ctx context.Context, ticket *types.Ticket)
	// TicketUpdated also reaches previousAssignee, who may have just lost
	// the ticket.
	TicketUpdated(ctx context.Context, ticket *types.Ticket, previousAssignee *uuid.UUID)
	TicketDeleted(ctx context.Context, ticket *types.Ticket)
}

type ticketNotifier struct {
	emit SSEEmitter
}

func NewTicketNotifier(emit SSEEmitter) TicketNotifier {
	return &ticketNotifier{emit: emit}
}

func (n *ticketNotifier) TicketCreated(ctx context.Context, ticket *types.Ticket) {
	n.fanOut(ctx, realtime.SSEEventTicketCreated, ticket, nil, map[string]any{"ticket": ticket})
}

func (n *ticketNotifier) TicketUpdated(ctx context.Context, ticket *types.Ticket, previousAssignee *uuid.UUID) {
	n.fanOut(ctx, realtime.SSEEventTicketUpdated, ticket, previousAssignee, map[string]any{"ticket": ticket})
}

func (n *ticketNotifier) TicketDeleted(ctx context.Context, ticket *types.Ticket) {
	if ticket == nil {
		return
	}
	n.fanOut(ctx, realtime.SSEEventTicketDeleted, ticket, nil, map[string]any{"ticketId": ticket.ID})
}

func (n *ticketNotifier) fanOut(ctx context.Context, event realtime.SSEEvent, ticket *types.Ticket, previousAssignee *uuid.UUID, data map[string]any) {
	if n == nil || n.emit == nil || ticket == nil {
		return
	}
	for _, channel := range ticketChannels(ticket, previousAssignee) {
		n.emit.Emit(ctx, realtime.SSEMessage{
			Channel: channel,
			Event:   event,
			Data:    data,
		})
	}
}

// ticketChannels lists each interested channel once: the creator, the
// current and previous assignee, and the admin channel.
func ticketChannels(ticket *types.Ticket, previousAssignee *uuid.UUID) []string {
	seen := map[string]bool{}
	out := make([]string, 0, 4)
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		ch := id.String()
		if seen[ch] {
			return
		}
		seen[ch] = true
		out = append(out, ch)
	}
	add(ticket.CreatedByID)
	if ticket.AssignedToID != nil {
		add(*ticket.AssignedToID)
	}
	if previousAssignee != nil {
		add(*previousAssignee)
	}
	return append(out, realtime.AdminChannel)
}
