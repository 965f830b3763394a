package repositories

import (
	"database/sql"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Append stores the notification record best-effort; dispatch must not fail
// because the record could not be written.
func (r NotificationRepository) Append(n models.Notification) error {
	db := r.db()
	if db == nil || !intdb.HasTable(db, "notifications") {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO notifications (id, customer_id, event_type, payload, created_at)
		VALUES (?,?,?,?,?)`,
		n.ID, n.CustomerID, n.EventType, n.Payload, n.CreatedAt)
	return err
}
