package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/pkg/pointers"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

const PasswordHashCost = 10

// TicketCounts is the per-status breakdown of tickets assigned to a user.
type TicketCounts struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"OPEN"`
	InProgress int64 `json:"IN_PROGRESS"`
	Resolved   int64 `json:"RESOLVED"`
	Closed     int64 `json:"CLOSED"`
}

func (c *TicketCounts) add(status types.TicketStatus, n int64) {
	c.Total += n
	switch status {
	case types.TicketStatusOpen:
		c.Open += n
	case types.TicketStatusInProgress:
		c.InProgress += n
	case types.TicketStatusResolved:
		c.Resolved += n
	case types.TicketStatusClosed:
		c.Closed += n
	}
}

type UserWithCounts struct {
	*types.User
	TicketCounts TicketCounts `json:"ticketCounts"`
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	List(ctx context.Context) ([]*UserWithCounts, error)
	ListAgents(ctx context.Context) ([]*types.UserSummary, error)
	Create(ctx context.Context, in CreateUserInput) (*types.User, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*types.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Avatar(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	ticketRepo    repos.TicketRepo
	activityRepo  repos.ActivityRepo
	avatarService AvatarService
	notify        TicketNotifier
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	ticketRepo repos.TicketRepo,
	activityRepo repos.ActivityRepo,
	avatarService AvatarService,
	notify TicketNotifier,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		ticketRepo:    ticketRepo,
		activityRepo:  activityRepo,
		avatarService: avatarService,
		notify:        notify,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user not found")
	}
	return u, nil
}

func (us *userService) List(ctx context.Context) ([]*UserWithCounts, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	users, err := us.userRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	groups, err := us.ticketRepo.CountAssignedByStatus(dbc)
	if err != nil {
		return nil, fmt.Errorf("count assigned tickets: %w", err)
	}
	counts := make(map[uuid.UUID]*TicketCounts, len(users))
	for _, g := range groups {
		c := counts[g.AssignedToID]
		if c == nil {
			c = &TicketCounts{}
			counts[g.AssignedToID] = c
		}
		c.add(g.Status, g.Count)
	}

	out := make([]*UserWithCounts, 0, len(users))
	for _, u := range users {
		row := &UserWithCounts{User: u}
		if c := counts[u.ID]; c != nil {
			row.TicketCounts = *c
		}
		out = append(out, row)
	}
	return out, nil
}

func (us *userService) ListAgents(ctx context.Context) ([]*types.UserSummary, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}
	users, err := us.userRepo.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	out := make([]*types.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (us *userService) Create(ctx context.Context, in CreateUserInput) (*types.User, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apierr.BadRequest("email and password are required")
	}
	role := types.RoleStaff
	if raw := strings.TrimSpace(in.Role); raw != "" {
		r, ok := types.ParseRole(raw)
		if !ok {
			return nil, apierr.BadRequest("invalid role %q", raw)
		}
		role = r
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}

	dbc := dbctx.Context{Ctx: ctx}
	exists, err := us.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.Conflict("user already exists")
	}
	if _, err := us.userRepo.Create(dbc, []*types.User{u}); err != nil {
		if errors.Is(err, repos.ErrEmailTaken) {
			return nil, apierr.Conflict("user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	us.log.Info("User created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (us *userService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*types.User, error) {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	self := rd.UserID == id

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		role, ok := types.ParseRole(*in.Role)
		if !ok {
			return nil, apierr.BadRequest("invalid role %q", *in.Role)
		}
		if self && role != types.RoleAdmin {
			return nil, apierr.BadRequest("cannot change your own role")
		}
		updates["role"] = role
	}
	if in.IsActive != nil {
		if self && !*in.IsActive {
			return nil, apierr.BadRequest("cannot deactivate your own account")
		}
		updates["is_active"] = *in.IsActive
	}

	var released []*types.Ticket
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := us.userRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if current == nil {
			return apierr.NotFound("user not found")
		}
		if err := us.userRepo.UpdateFields(dbc, id, updates); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if in.IsActive != nil && !*in.IsActive && current.IsActive {
			released, err = us.releaseTickets(dbc, rd.UserID, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	us.announceReleased(ctx, released, id)

	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user not found")
	}
	return u, nil
}

func (us *userService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if rd.UserID == id {
		return apierr.BadRequest("cannot delete your own account")
	}

	var released []*types.Ticket
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ok, err := us.userRepo.SoftDelete(dbc, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !ok {
			return apierr.NotFound("user not found")
		}
		released, err = us.releaseTickets(dbc, rd.UserID, id)
		return err
	})
	if err != nil {
		return err
	}
	us.log.Info("User deleted", "user_id", id, "released_tickets", len(released))
	us.announceReleased(ctx, released, id)
	return nil
}

// releaseTickets unassigns the user's open work, logging one "unassigned"
// activity per ticket on behalf of actor.
func (us *userService) releaseTickets(dbc dbctx.Context, actor, userID uuid.UUID) ([]*types.Ticket, error) {
	tickets, err := us.ticketRepo.ListOpenAssignedTo(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list assigned tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, nil
	}
	activities := make([]*types.Activity, 0, len(tickets))
	for _, tk := range tickets {
		if err := us.ticketRepo.UpdateFields(dbc, tk.ID, map[string]interface{}{"assigned_to_id": nil}); err != nil {
			return nil, fmt.Errorf("unassign ticket %s: %w", tk.ID, err)
		}
		activities = append(activities, &types.Activity{
			TicketID:      tk.ID,
			UserID:        actor,
			Action:        types.ActionUnassigned,
			PreviousValue: pointers.String(userID.String()),
		})
		tk.AssignedToID = nil
	}
	if _, err := us.activityRepo.Create(dbc, activities); err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}
	return tickets, nil
}

func (us *userService) announceReleased(ctx context.Context, tickets []*types.Ticket, previous uuid.UUID) {
	for _, tk := range tickets {
		us.notify.TicketUpdated(ctx, tk, &previous)
	}
}

func (us *userService) Avatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}
	summaries, err := us.userRepo.GetSummaries(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(summaries) == 0 {
		return nil, apierr.NotFound("user not found")
	}
	return us.avatarService.Render(summaries[0])
}
