package notify

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/utils"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// kafkaNotifier publishes lifecycle events to one topic, keyed by customer id
// so per-customer ordering survives partitioning.
type kafkaNotifier struct {
	writer *kafka.Writer
	topic  string
}

func newKafkaNotifier(env intconfig.Env) *kafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(env.KafkaBrokers...),
		Topic:        env.NotificationTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		MaxAttempts:  3,
		// async so a slow broker never stalls a state transition holding a
		// booking lock; delivery failures surface via ErrorLogger
		Async:       true,
		Logger:      kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(log.Printf),
	}
	return &kafkaNotifier{writer: writer, topic: env.NotificationTopic}
}

type eventEnvelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	CustomerID int64          `json:"customer_id"`
	Payload    map[string]any `json:"payload"`
	EmittedAt  string         `json:"emitted_at"`
}

func (n *kafkaNotifier) Notify(customerID int64, eventType string, payload map[string]any) {
	env := eventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		CustomerID: customerID,
		Payload:    payload,
		EmittedAt:  utils.FormatDateTime(utils.NowUTC()),
	}
	value, err := json.Marshal(env)
	if err != nil {
		utils.LogEvent("", "notify", eventType, "marshal gagal: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(customerID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	// the async writer only enqueues here; broker failures land in
	// ErrorLogger instead of blocking the caller
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		utils.LogEvent("", "notify", eventType, "enqueue gagal: "+err.Error())
	}
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}
