package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/domain/user"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, v := range Statuses {
		if v == s {
			return v, true
		}
	}
	return "", false
}

// IsTerminal reports whether the ticket counts as resolved.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	for _, v := range Priorities {
		if v == p {
			return v, true
		}
	}
	return "", false
}

type Ticket struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string        `gorm:"not null;column:title" json:"title"`
	Description  string        `gorm:"type:text;not null;column:description" json:"description"`
	Status       Status        `gorm:"not null;column:status;index" json:"status"`
	Priority     Priority      `gorm:"not null;column:priority;index" json:"priority"`
	CreatedByID  uuid.UUID     `gorm:"type:uuid;not null;column:created_by_id;index" json:"createdById"`
	CreatedBy    *user.Summary `gorm:"foreignKey:CreatedByID;references:ID" json:"createdBy,omitempty"`
	AssignedToID *uuid.UUID    `gorm:"type:uuid;column:assigned_to_id;index" json:"assignedToId"`
	AssignedTo   *user.Summary `gorm:"foreignKey:AssignedToID;references:ID" json:"assignedTo"`
	ResolvedAt   *time.Time    `gorm:"column:resolved_at;index" json:"resolvedAt"`
	CreatedAt    time.Time     `gorm:"not null;column:created_at;index" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"not null;column:updated_at" json:"updatedAt"`
	Activities   []*Activity   `gorm:"foreignKey:TicketID" json:"activities,omitempty"`
}

func (Ticket) TableName() string { return "ticket" }

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// InScope reports whether userID created or is assigned to the ticket.
func (t *Ticket) InScope(userID uuid.UUID) bool {
	if t == nil || userID == uuid.Nil {
		return false
	}
	if t.CreatedByID == userID {
		return true
	}
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// Summary is the ticket slice embedded in activity feeds.
type Summary struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"column:title" json:"title"`
	Status   Status    `gorm:"column:status" json:"status"`
	Priority Priority  `gorm:"column:priority" json:"priority"`
}

func (Summary) TableName() string { return "ticket" }
