package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tickethub-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, role types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     email,
		Password: "pw",
		Role:     role,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// TicketOpts overrides SeedTicket defaults. Zero fields keep the default.
type TicketOpts struct {
	Title      string
	Status     types.TicketStatus
	Priority   types.TicketPriority
	AssignedTo *uuid.UUID
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

func SeedTicket(tb testing.TB, ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, opts TicketOpts) *types.Ticket {
	tb.Helper()
	t := &types.Ticket{
		ID:           uuid.New(),
		Title:        "ticket",
		Description:  "description",
		Status:       types.TicketStatusOpen,
		Priority:     types.TicketPriorityMedium,
		CreatedByID:  creatorID,
		AssignedToID: opts.AssignedTo,
		ResolvedAt:   opts.ResolvedAt,
	}
	if opts.Title != "" {
		t.Title = opts.Title
	}
	if opts.Status != "" {
		t.Status = opts.Status
	}
	if opts.Priority != "" {
		t.Priority = opts.Priority
	}
	if !opts.CreatedAt.IsZero() {
		t.CreatedAt = opts.CreatedAt.UTC()
		t.UpdatedAt = opts.CreatedAt.UTC()
	}
	if t.ResolvedAt != nil {
		r := t.ResolvedAt.UTC()
		t.ResolvedAt = &r
	}
	if err := tx.WithContext(ctx).Omit("CreatedBy", "AssignedTo", "Activities").Create(t).Error; err != nil {
		tb.Fatalf("seed ticket: %v", err)
	}
	return t
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, ticketID, userID uuid.UUID, action string, at time.Time) *types.Activity {
	tb.Helper()
	a := &types.Activity{
		ID:        uuid.New(),
		TicketID:  ticketID,
		UserID:    userID,
		Action:    action,
		CreatedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Ticket", "User").Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}
