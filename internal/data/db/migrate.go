package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/tickethub-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Ticket{},
		&types.Activity{},
	)
}

// EnsureTicketIndexes creates the reporting indexes and, on postgres, the
// foreign keys that AutoMigrate skips.
func EnsureTicketIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_ticket_status", `CREATE INDEX IF NOT EXISTS idx_ticket_status ON ticket(status);`},
		{"idx_ticket_priority", `CREATE INDEX IF NOT EXISTS idx_ticket_priority ON ticket(priority);`},
		{"idx_ticket_created_at", `CREATE INDEX IF NOT EXISTS idx_ticket_created_at ON ticket(created_at);`},
		{"idx_ticket_assigned_to_id", `CREATE INDEX IF NOT EXISTS idx_ticket_assigned_to_id ON ticket(assigned_to_id);`},
		{"idx_ticket_resolved_at", `CREATE INDEX IF NOT EXISTS idx_ticket_resolved_at ON ticket(resolved_at);`},
		{"idx_ticket_activity_ticket_created", `CREATE INDEX IF NOT EXISTS idx_ticket_activity_ticket_created ON ticket_activity(ticket_id, created_at);`},
	}
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", idx.name, err)
		}
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	fks := []struct {
		name string
		sql  string
	}{
		{"fk_ticket_created_by", `ALTER TABLE ticket ADD CONSTRAINT fk_ticket_created_by FOREIGN KEY (created_by_id) REFERENCES "user"(id);`},
		{"fk_ticket_assigned_to", `ALTER TABLE ticket ADD CONSTRAINT fk_ticket_assigned_to FOREIGN KEY (assigned_to_id) REFERENCES "user"(id) ON DELETE SET NULL;`},
		{"fk_ticket_activity_ticket", `ALTER TABLE ticket_activity ADD CONSTRAINT fk_ticket_activity_ticket FOREIGN KEY (ticket_id) REFERENCES ticket(id) ON DELETE CASCADE;`},
		{"fk_ticket_activity_user", `ALTER TABLE ticket_activity ADD CONSTRAINT fk_ticket_activity_user FOREIGN KEY (user_id) REFERENCES "user"(id);`},
	}
	for _, fk := range fks {
		var count int64
		if err := db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, fk.name).Scan(&count).Error; err != nil {
			return fmt.Errorf("lookup %s: %w", fk.name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Exec(fk.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", fk.name, err)
		}
	}
	return nil
}
