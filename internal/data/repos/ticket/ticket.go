package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

// Scope limits queries to what a caller may see. The zero value sees
// everything. With AssignedOnly only tickets assigned to UserID match,
// otherwise tickets created by or assigned to UserID.
type Scope struct {
	UserID       uuid.UUID
	AssignedOnly bool
}

func (s Scope) apply(q *gorm.DB, table string) *gorm.DB {
	if s.UserID == uuid.Nil {
		return q
	}
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	if s.AssignedOnly {
		return q.Where(col("assigned_to_id")+" = ?", s.UserID)
	}
	return q.Where("("+col("created_by_id")+" = ? OR "+col("assigned_to_id")+" = ?)", s.UserID, s.UserID)
}

type ListFilter struct {
	Scope        Scope
	Status       types.TicketStatus
	Priority     types.TicketPriority
	AssignedToID *uuid.UUID
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Search       string
	Limit        int
	Offset       int
}

// ReportFilter selects ReportRows. Zero fields are unconstrained.
type ReportFilter struct {
	Scope        Scope
	Statuses     []types.TicketStatus
	AssignedOnly bool
	CreatedFrom  *time.Time
	ResolvedFrom *time.Time
}

type StatusCount struct {
	Status types.TicketStatus `gorm:"column:status"`
	Count  int64              `gorm:"column:count"`
}

type PriorityCount struct {
	Priority types.TicketPriority `gorm:"column:priority"`
	Count    int64                `gorm:"column:count"`
}

type AssigneeStatusCount struct {
	AssignedToID uuid.UUID          `gorm:"column:assigned_to_id"`
	Status       types.TicketStatus `gorm:"column:status"`
	Count        int64              `gorm:"column:count"`
}

type TicketRepo interface {
	Create(dbc dbctx.Context, tickets []*types.Ticket) ([]*types.Ticket, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Ticket, error)
	FindByTitle(dbc dbctx.Context, title string) (*types.Ticket, error)
	List(dbc dbctx.Context, filter ListFilter) ([]*types.Ticket, int64, error)
	ListRecent(dbc dbctx.Context, scope Scope, limit int) ([]*types.Ticket, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	CountByStatus(dbc dbctx.Context, scope Scope) ([]StatusCount, error)
	CountByPriority(dbc dbctx.Context, scope Scope) ([]PriorityCount, error)
	CountAssignedByStatus(dbc dbctx.Context) ([]AssigneeStatusCount, error)
	ListReportRows(dbc dbctx.Context, filter ReportFilter) ([]types.TicketReportRow, error)
	ListOpenAssignedTo(dbc dbctx.Context, userID uuid.UUID) ([]*types.Ticket, error)
}

type ticketRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTicketRepo(db *gorm.DB, baseLog *logger.Logger) TicketRepo {
	return &ticketRepo{
		db:  db,
		log: baseLog.With("repo", "TicketRepo"),
	}
}

func (r *ticketRepo) Create(dbc dbctx.Context, tickets []*types.Ticket) ([]*types.Ticket, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tickets) == 0 {
		return []*types.Ticket{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit("CreatedBy", "AssignedTo", "Activities").
		Create(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetByID loads the ticket with its people and its activity feed, newest
// first. Returns nil, nil when missing.
// FindByTitle returns the oldest ticket whose title matches exactly, or nil.
func (r *ticketRepo) FindByTitle(dbc dbctx.Context, title string) (*types.Ticket, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Ticket
	if err := transaction.WithContext(dbc.Ctx).
		Where("title = ?", title).
		Order("created_at ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *ticketRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Ticket, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Ticket
	if err := transaction.WithContext(dbc.Ctx).
		Preload("CreatedBy").
		Preload("AssignedTo").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Activities.User").
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *ticketRepo) filtered(dbc dbctx.Context, filter ListFilter) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Ticket{})
	q = filter.Scope.apply(q, "")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedToID != nil {
		q = q.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", filter.CreatedTo.UTC())
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	return q
}

func (r *ticketRepo) List(dbc dbctx.Context, filter ListFilter) ([]*types.Ticket, int64, error) {
	var total int64
	if err := r.filtered(dbc, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []*types.Ticket{}
	q := r.filtered(dbc, filter).
		Preload("CreatedBy").
		Preload("AssignedTo").
		Order("created_at DESC").
		Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ticketRepo) ListRecent(dbc dbctx.Context, scope Scope, limit int) ([]*types.Ticket, error) {
	out, _, err := r.List(dbc, ListFilter{Scope: scope, Limit: limit})
	return out, err
}

func (r *ticketRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Ticket{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ticketRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Ticket{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ticketRepo) CountByStatus(dbc dbctx.Context, scope Scope) ([]StatusCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []StatusCount
	q := scope.apply(transaction.WithContext(dbc.Ctx).Model(&types.Ticket{}), "")
	if err := q.Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ticketRepo) CountByPriority(dbc dbctx.Context, scope Scope) ([]PriorityCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []PriorityCount
	q := scope.apply(transaction.WithContext(dbc.Ctx).Model(&types.Ticket{}), "")
	if err := q.Select("priority, COUNT(*) AS count").
		Group("priority").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountAssignedByStatus groups every assigned ticket by assignee and status.
func (r *ticketRepo) CountAssignedByStatus(dbc dbctx.Context) ([]AssigneeStatusCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []AssigneeStatusCount
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Ticket{}).
		Select("assigned_to_id, status, COUNT(*) AS count").
		Where("assigned_to_id IS NOT NULL").
		Group("assigned_to_id, status").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ticketRepo) ListReportRows(dbc dbctx.Context, filter ReportFilter) ([]types.TicketReportRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.TicketReportRow{})
	q = filter.Scope.apply(q, "")
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.AssignedOnly {
		q = q.Where("assigned_to_id IS NOT NULL")
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.ResolvedFrom != nil {
		q = q.Where("resolved_at IS NOT NULL AND resolved_at >= ?", filter.ResolvedFrom.UTC())
	}
	out := []types.TicketReportRow{}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListOpenAssignedTo returns the non-terminal tickets assigned to userID.
func (r *ticketRepo) ListOpenAssignedTo(dbc dbctx.Context, userID uuid.UUID) ([]*types.Ticket, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Ticket{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("assigned_to_id = ?", userID).
		Where("status NOT IN ?", []types.TicketStatus{types.TicketStatusResolved, types.TicketStatusClosed}).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
