package ticket

import (
	"time"

	"github.com/google/uuid"
)

// ReportRow is the narrow projection the reporting reductions work on.
type ReportRow struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status       Status     `gorm:"column:status"`
	Priority     Priority   `gorm:"column:priority"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;column:assigned_to_id"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	ResolvedAt   *time.Time `gorm:"column:resolved_at"`
}

func (ReportRow) TableName() string { return "ticket" }

// ResolutionHours is the created→resolved span in hours, false when the row
// has no resolution timestamp.
func (r ReportRow) ResolutionHours() (float64, bool) {
	if r.ResolvedAt == nil {
		return 0, false
	}
	return r.ResolvedAt.Sub(r.CreatedAt).Hours(), true
}
