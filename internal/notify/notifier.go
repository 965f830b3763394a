package notify

import (
	"encoding/json"
	"strconv"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/utils"
)

// Notifier delivers lifecycle events to customers. Delivery is fire-and-forget:
// failures are logged, never surfaced back to the lifecycle operation.
type Notifier interface {
	Notify(customerID int64, eventType string, payload map[string]any)
	Close() error
}

// NewNotifier picks the kafka publisher when brokers are configured and the
// log-only fallback otherwise, so local development needs no broker.
func NewNotifier(env intconfig.Env) Notifier {
	if len(env.KafkaBrokers) > 0 {
		return newKafkaNotifier(env)
	}
	return LogNotifier{}
}

// LogNotifier writes events to the process log only.
type LogNotifier struct{}

func (LogNotifier) Notify(customerID int64, eventType string, payload map[string]any) {
	b, _ := json.Marshal(payload)
	utils.LogEvent("", "notify", eventType, "customer="+strconv.FormatInt(customerID, 10)+" payload="+string(b))
}

func (LogNotifier) Close() error { return nil }
