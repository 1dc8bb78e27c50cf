package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/models"
)

// AddIndexes adds the composite indexes that AutoMigrate tags cannot express
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		table   string
		name    string
		columns string
	}{
		// timeline reads are always per ticket in chronological order
		{&models.TicketEvent{}, "ticket_events", "idx_ticket_events_ticket_created", "ticket_id, created_at, id"},
		// role-scoped listings
		{&models.Ticket{}, "tickets", "idx_tickets_assigned_created", "assigned_to, created_at"},
		{&models.Ticket{}, "tickets", "idx_tickets_creator_created", "created_by, created_at"},
		{&models.Attachment{}, "attachments", "idx_attachments_ticket_created", "ticket_id, created_at"},
		{&models.Rating{}, "ratings", "idx_ratings_user_created", "user_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Debug("created index", "name", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
