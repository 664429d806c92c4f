package ticket

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, activities []*types.Activity) ([]*types.Activity, error)
	ListByTicket(dbc dbctx.Context, ticketID uuid.UUID) ([]*types.Activity, error)
	ListRecent(dbc dbctx.Context, scope Scope, limit int) ([]*types.Activity, error)
	DeleteByTicket(dbc dbctx.Context, ticketID uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{
		db:  db,
		log: baseLog.With("repo", "ActivityRepo"),
	}
}

func (r *activityRepo) Create(dbc dbctx.Context, activities []*types.Activity) ([]*types.Activity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit("Ticket", "User").
		Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) ListByTicket(dbc dbctx.Context, ticketID uuid.UUID) ([]*types.Activity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Activity{}
	if ticketID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("User").
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent returns the newest activities on tickets inside scope.
func (r *activityRepo) ListRecent(dbc dbctx.Context, scope Scope, limit int) ([]*types.Activity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Activity{}
	if limit <= 0 {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Preload("User").
		Preload("Ticket")
	if scope.UserID != uuid.Nil {
		q = q.Joins("JOIN ticket ON ticket.id = ticket_activity.ticket_id")
		q = scope.apply(q, "ticket")
	}
	if err := q.
		Order("ticket_activity.created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) DeleteByTicket(dbc dbctx.Context, ticketID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("ticket_id = ?", ticketID).
		Delete(&types.Activity{}).Error
}
