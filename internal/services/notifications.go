package services

import (
	"encoding/json"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/notify"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"

	"github.com/google/uuid"
)

// dispatchEvent persists the notification record and hands the event to the
// dispatcher. Both sides are best-effort: lifecycle operations never fail or
// block because of notification trouble.
func dispatchEvent(repo repositories.NotificationRepository, n notify.Notifier, requestID string, customerID int64, eventType string, payload map[string]any) {
	if customerID <= 0 {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		utils.LogEvent(requestID, "notify", eventType, "marshal payload gagal: "+err.Error())
		raw = []byte("{}")
	}
	record := models.Notification{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		EventType:  eventType,
		Payload:    string(raw),
		CreatedAt:  utils.NowUTC(),
	}
	if err := repo.Append(record); err != nil {
		utils.LogEvent(requestID, "notify", eventType, "simpan record gagal: "+err.Error())
	}

	if n != nil {
		n.Notify(customerID, eventType, payload)
	}
}
