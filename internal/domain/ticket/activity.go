package ticket

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/domain/user"
)

const (
	ActionCreated         = "created"
	ActionAssigned        = "assigned"
	ActionUnassigned      = "unassigned"
	ActionStatusChanged   = "status_changed"
	ActionPriorityChanged = "priority_changed"
	ActionUpdated         = "updated"
)

// Activity is one audit entry on a ticket. Metadata carries the edited field
// names for "updated" entries.
type Activity struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID      uuid.UUID      `gorm:"type:uuid;not null;column:ticket_id;index:idx_ticket_activity_ticket_created,priority:1" json:"ticketId"`
	Ticket        *Summary       `gorm:"foreignKey:TicketID;references:ID" json:"ticket,omitempty"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;column:user_id;index" json:"userId"`
	User          *user.Summary  `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action        string         `gorm:"not null;column:action" json:"action"`
	PreviousValue *string        `gorm:"column:previous_value" json:"previousValue"`
	NewValue      *string        `gorm:"column:new_value" json:"newValue"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;column:created_at;index:idx_ticket_activity_ticket_created,priority:2" json:"createdAt"`
}

func (Activity) TableName() string { return "ticket_activity" }

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
