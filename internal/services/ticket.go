package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/pkg/pointers"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

const (
	DefaultTicketPageSize = 10
	MaxTicketPageSize     = 100
)

// TicketListInput is the raw query string of GET /api/tickets.
type TicketListInput struct {
	Status      string
	Priority    string
	AssignedTo  string
	CreatedFrom string
	CreatedTo   string
	Search      string
	Limit       int
	Offset      int
}

type TicketPage struct {
	Tickets []*types.Ticket `json:"tickets"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type CreateTicketInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Priority     string  `json:"priority"`
	AssignedToID *string `json:"assignedToId"`
}

// UpdateTicketInput is a partial update. AssignedToSet distinguishes an
// explicit null (unassign) from an absent assignedToId.
type UpdateTicketInput struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedToSet bool
	AssignedToID  *string
}

type TicketService interface {
	List(ctx context.Context, in TicketListInput) (*TicketPage, error)
	Create(ctx context.Context, in CreateTicketInput) (*types.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Ticket, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTicketInput) (*types.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ticketService struct {
	db           *gorm.DB
	log          *logger.Logger
	ticketRepo   repos.TicketRepo
	activityRepo repos.ActivityRepo
	userRepo     repos.UserRepo
	notify       TicketNotifier
	cal          analytics.Calendar
	metrics      *observability.Metrics
}

func NewTicketService(
	db *gorm.DB,
	log *logger.Logger,
	ticketRepo repos.TicketRepo,
	activityRepo repos.ActivityRepo,
	userRepo repos.UserRepo,
	notify TicketNotifier,
	cal analytics.Calendar,
	metrics *observability.Metrics,
) TicketService {
	return &ticketService{
		db:           db,
		log:          log.With("service", "TicketService"),
		ticketRepo:   ticketRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		notify:       notify,
		cal:          cal,
		metrics:      metrics,
	}
}

func (s *ticketService) List(ctx context.Context, in TicketListInput) (*TicketPage, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	filter := repos.TicketListFilter{
		Scope:  ticketScope(rd),
		Search: strings.TrimSpace(in.Search),
	}
	if raw := strings.TrimSpace(in.Status); raw != "" {
		st, ok := types.ParseTicketStatus(raw)
		if !ok {
			return nil, apierr.BadRequest("invalid status %q", raw)
		}
		filter.Status = st
	}
	if raw := strings.TrimSpace(in.Priority); raw != "" {
		p, ok := types.ParseTicketPriority(raw)
		if !ok {
			return nil, apierr.BadRequest("invalid priority %q", raw)
		}
		filter.Priority = p
	}
	if rd.IsAdmin() {
		assignee, err := parseOptionalUUID(&in.AssignedTo, "assignedTo")
		if err != nil {
			return nil, err
		}
		filter.AssignedToID = assignee
	}
	if raw := strings.TrimSpace(in.CreatedFrom); raw != "" {
		from, _, err := s.parseDate(raw)
		if err != nil {
			return nil, apierr.BadRequest("invalid createdFrom %q", raw)
		}
		filter.CreatedFrom = &from
	}
	if raw := strings.TrimSpace(in.CreatedTo); raw != "" {
		to, dateOnly, err := s.parseDate(raw)
		if err != nil {
			return nil, apierr.BadRequest("invalid createdTo %q", raw)
		}
		if dateOnly {
			to = s.cal.AddDays(to, 1).Add(-time.Millisecond)
		}
		filter.CreatedTo = &to
	}

	filter.Limit = in.Limit
	if filter.Limit <= 0 {
		filter.Limit = DefaultTicketPageSize
	}
	if filter.Limit > MaxTicketPageSize {
		filter.Limit = MaxTicketPageSize
	}
	filter.Offset = in.Offset
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tickets, total, err := s.ticketRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return &TicketPage{Tickets: tickets, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// parseDate accepts YYYY-MM-DD (midnight in the reporting location) or
// RFC3339. dateOnly reports the first form.
func (s *ticketService) parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, s.cal.Loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

func (s *ticketService) Create(ctx context.Context, in CreateTicketInput) (*types.Ticket, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apierr.BadRequest("title and description are required")
	}
	priority := types.TicketPriorityMedium
	if raw := strings.TrimSpace(in.Priority); raw != "" {
		p, ok := types.ParseTicketPriority(raw)
		if !ok {
			return nil, apierr.BadRequest("invalid priority %q", raw)
		}
		priority = p
	}
	assignee, err := parseOptionalUUID(in.AssignedToID, "assignedToId")
	if err != nil {
		return nil, err
	}
	if assignee != nil && !rd.IsAdmin() {
		return nil, apierr.Forbidden("only admins can assign tickets")
	}

	tk := &types.Ticket{
		Title:        title,
		Description:  description,
		Status:       types.TicketStatusOpen,
		Priority:     priority,
		CreatedByID:  rd.UserID,
		AssignedToID: assignee,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if assignee != nil {
			if err := s.requireAssignable(dbc, *assignee); err != nil {
				return err
			}
		}
		if _, err := s.ticketRepo.Create(dbc, []*types.Ticket{tk}); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		activities := []*types.Activity{{
			TicketID: tk.ID,
			UserID:   rd.UserID,
			Action:   types.ActionCreated,
			NewValue: pointers.String(string(tk.Status)),
		}}
		if assignee != nil {
			activities = append(activities, &types.Activity{
				TicketID: tk.ID,
				UserID:   rd.UserID,
				Action:   types.ActionAssigned,
				NewValue: pointers.UUIDString(assignee),
			})
		}
		if _, err := s.activityRepo.Create(dbc, activities); err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.ticketRepo.GetByID(dbctx.Context{Ctx: ctx}, tk.ID)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}
	if created == nil {
		created = tk
	}
	s.metrics.IncTicketMutation("created")
	s.notify.TicketCreated(ctx, created)
	return created, nil
}

func (s *ticketService) Get(ctx context.Context, id uuid.UUID) (*types.Ticket, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	tk, err := s.ticketRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if tk == nil {
		return nil, apierr.NotFound("ticket not found")
	}
	if !rd.IsAdmin() && !tk.InScope(rd.UserID) {
		return nil, apierr.Forbidden("you do not have access to this ticket")
	}
	return tk, nil
}

func (s *ticketService) Update(ctx context.Context, id uuid.UUID, in UpdateTicketInput) (*types.Ticket, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	var (
		previousAssignee *uuid.UUID
		changed          bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := s.ticketRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load ticket: %w", err)
		}
		if current == nil {
			return apierr.NotFound("ticket not found")
		}
		if !rd.IsAdmin() && !current.InScope(rd.UserID) {
			return apierr.Forbidden("you do not have access to this ticket")
		}
		if in.AssignedToSet && !rd.IsAdmin() {
			return apierr.Forbidden("only admins can assign tickets")
		}
		previousAssignee = current.AssignedToID

		updates, activities, err := s.diff(dbc, rd.UserID, current, in)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := s.ticketRepo.UpdateFields(dbc, id, updates); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		if _, err := s.activityRepo.Create(dbc, activities); err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.ticketRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}
	if updated == nil {
		return nil, apierr.NotFound("ticket not found")
	}
	// a patch that matches the stored values is not a mutation
	if changed {
		s.metrics.IncTicketMutation("updated")
		s.notify.TicketUpdated(ctx, updated, previousAssignee)
	}
	return updated, nil
}

// diff turns a patch into column updates plus the activity entries that
// describe them. Fields set to their current value produce nothing.
func (s *ticketService) diff(dbc dbctx.Context, actor uuid.UUID, current *types.Ticket, in UpdateTicketInput) (map[string]interface{}, []*types.Activity, error) {
	updates := map[string]interface{}{}
	var activities []*types.Activity
	record := func(action string, prev, next *string) {
		activities = append(activities, &types.Activity{
			TicketID:      current.ID,
			UserID:        actor,
			Action:        action,
			PreviousValue: prev,
			NewValue:      next,
		})
	}

	var edited []string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, nil, apierr.BadRequest("title cannot be empty")
		}
		if title != current.Title {
			updates["title"] = title
			edited = append(edited, "title")
		}
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, nil, apierr.BadRequest("description cannot be empty")
		}
		if description != current.Description {
			updates["description"] = description
			edited = append(edited, "description")
		}
	}

	if in.Status != nil {
		st, ok := types.ParseTicketStatus(*in.Status)
		if !ok {
			return nil, nil, apierr.BadRequest("invalid status %q", *in.Status)
		}
		if st != current.Status {
			updates["status"] = st
			switch {
			case st.IsTerminal() && !current.Status.IsTerminal():
				updates["resolved_at"] = time.Now().UTC()
			case !st.IsTerminal() && current.Status.IsTerminal():
				updates["resolved_at"] = nil
			}
			record(types.ActionStatusChanged, pointers.String(string(current.Status)), pointers.String(string(st)))
		}
	}

	if in.Priority != nil {
		p, ok := types.ParseTicketPriority(*in.Priority)
		if !ok {
			return nil, nil, apierr.BadRequest("invalid priority %q", *in.Priority)
		}
		if p != current.Priority {
			updates["priority"] = p
			record(types.ActionPriorityChanged, pointers.String(string(current.Priority)), pointers.String(string(p)))
		}
	}

	if in.AssignedToSet {
		next, err := parseOptionalUUID(in.AssignedToID, "assignedToId")
		if err != nil {
			return nil, nil, err
		}
		if !pointers.SameUUID(next, current.AssignedToID) {
			prev := pointers.UUIDString(current.AssignedToID)
			if next == nil {
				updates["assigned_to_id"] = nil
				record(types.ActionUnassigned, prev, nil)
			} else {
				if err := s.requireAssignable(dbc, *next); err != nil {
					return nil, nil, err
				}
				updates["assigned_to_id"] = *next
				record(types.ActionAssigned, prev, pointers.UUIDString(next))
			}
		}
	}

	if len(edited) > 0 {
		meta, err := json.Marshal(map[string][]string{"fields": edited})
		if err != nil {
			return nil, nil, fmt.Errorf("encode activity metadata: %w", err)
		}
		activities = append(activities, &types.Activity{
			TicketID: current.ID,
			UserID:   actor,
			Action:   types.ActionUpdated,
			Metadata: datatypes.JSON(meta),
		})
	}
	return updates, activities, nil
}

func (s *ticketService) requireAssignable(dbc dbctx.Context, userID uuid.UUID) error {
	u, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return fmt.Errorf("load assignee: %w", err)
	}
	if u == nil || !u.IsActive {
		return apierr.BadRequest("assignee must be an active user")
	}
	return nil
}

func (s *ticketService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	var deleted *types.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := s.ticketRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load ticket: %w", err)
		}
		if current == nil {
			return apierr.NotFound("ticket not found")
		}
		if err := s.activityRepo.DeleteByTicket(dbc, id); err != nil {
			return fmt.Errorf("delete activities: %w", err)
		}
		if _, err := s.ticketRepo.Delete(dbc, id); err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncTicketMutation("deleted")
	s.notify.TicketDeleted(ctx, deleted)
	return nil
}
