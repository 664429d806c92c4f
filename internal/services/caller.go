package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

func requireCaller(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	return rd, nil
}

func requireAdmin(ctx context.Context) (*ctxutil.RequestData, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !rd.IsAdmin() {
		return nil, apierr.Forbidden("admin access required")
	}
	return rd, nil
}

// ticketScope is everything for admins, own and assigned tickets for staff.
func ticketScope(rd *ctxutil.RequestData) repos.TicketScope {
	if rd.IsAdmin() {
		return repos.TicketScope{}
	}
	return repos.TicketScope{UserID: rd.UserID}
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apierr.BadRequest("invalid %s", field)
	}
	return &id, nil
}
