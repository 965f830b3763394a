package notify

import (
	"testing"

	intconfig "tourbooking/internal/config"
)

func TestNewNotifierSelection(t *testing.T) {
	n := NewNotifier(intconfig.Env{})
	if _, ok := n.(LogNotifier); !ok {
		t.Fatalf("no brokers should select the log fallback, got %T", n)
	}

	n = NewNotifier(intconfig.Env{KafkaBrokers: []string{"localhost:9092"}, NotificationTopic: "booking-events"})
	if _, ok := n.(*kafkaNotifier); !ok {
		t.Fatalf("brokers configured should select kafka, got %T", n)
	}
}

func TestKafkaWriterDecoupledFromCaller(t *testing.T) {
	n := newKafkaNotifier(intconfig.Env{
		KafkaBrokers:      []string{"localhost:9092"},
		NotificationTopic: "booking-events",
	})
	defer n.Close()

	if !n.writer.Async {
		t.Fatalf("writer must be async so publishes never block state transitions")
	}
	if n.writer.Topic != "booking-events" {
		t.Fatalf("topic = %s", n.writer.Topic)
	}
}
