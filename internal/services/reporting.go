package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
)

// traced runs fn inside a span named after the report query it performs.
func traced(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.Tracer().Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// statusTotals is the scoped ticket count per status plus the grand total.
type statusTotals struct {
	total    int64
	byStatus map[types.TicketStatus]int64
}

func loadStatusTotals(ctx context.Context, ticketRepo repos.TicketRepo, scope repos.TicketScope) (statusTotals, error) {
	out := statusTotals{byStatus: map[types.TicketStatus]int64{}}
	err := traced(ctx, "report.count_by_status", func(ctx context.Context) error {
		rows, err := ticketRepo.CountByStatus(dbctx.Context{Ctx: ctx}, scope)
		if err != nil {
			return fmt.Errorf("count tickets by status: %w", err)
		}
		for _, r := range rows {
			out.byStatus[r.Status] += r.Count
			out.total += r.Count
		}
		return nil
	})
	return out, err
}

func loadPriorityCounts(ctx context.Context, ticketRepo repos.TicketRepo, scope repos.TicketScope) (map[types.TicketPriority]int64, error) {
	out := map[types.TicketPriority]int64{}
	err := traced(ctx, "report.count_by_priority", func(ctx context.Context) error {
		rows, err := ticketRepo.CountByPriority(dbctx.Context{Ctx: ctx}, scope)
		if err != nil {
			return fmt.Errorf("count tickets by priority: %w", err)
		}
		for _, r := range rows {
			out[r.Priority] += r.Count
		}
		return nil
	})
	return out, err
}

func loadReportRows(ctx context.Context, ticketRepo repos.TicketRepo, name string, filter repos.TicketReportFilter) ([]types.TicketReportRow, error) {
	var out []types.TicketReportRow
	err := traced(ctx, "report."+name, func(ctx context.Context) error {
		rows, err := ticketRepo.ListReportRows(dbctx.Context{Ctx: ctx}, filter)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		out = rows
		return nil
	})
	return out, err
}

// agentNames resolves display names for every assignee in rows. Deleted
// users still resolve.
func agentNames(ctx context.Context, userRepo repos.UserRepo, rows []types.TicketReportRow) (map[uuid.UUID]string, error) {
	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0)
	for _, r := range rows {
		if r.AssignedToID == nil {
			continue
		}
		if _, ok := seen[*r.AssignedToID]; ok {
			continue
		}
		seen[*r.AssignedToID] = struct{}{}
		ids = append(ids, *r.AssignedToID)
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	err := traced(ctx, "report.agent_names", func(ctx context.Context) error {
		summaries, err := userRepo.GetSummaries(dbctx.Context{Ctx: ctx}, ids)
		if err != nil {
			return fmt.Errorf("load agent names: %w", err)
		}
		for _, s := range summaries {
			names[s.ID] = s.DisplayName()
		}
		return nil
	})
	return names, err
}

func rangeAttr(rangeDays int) attribute.KeyValue {
	return attribute.Int("analytics.range_days", rangeDays)
}
