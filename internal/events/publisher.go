package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/pkg/config"
)

// EventPerformanceUpdated is emitted after a recalculation changed vendor metrics
const EventPerformanceUpdated = "vendor.performance.updated"

// Trigger identifies what started a recalculation
type Trigger string

const (
	TriggerPurchaseOrder Trigger = "purchase_order"
	TriggerManual        Trigger = "manual"
	TriggerSweep         Trigger = "sweep"
)

// PerformanceEvent is the payload published for a vendor metrics change
type PerformanceEvent struct {
	EventType       string                   `json:"event_type"`
	VendorID        uint                     `json:"vendor_id"`
	Trigger         Trigger                  `json:"trigger"`
	PurchaseOrderID *uint                    `json:"purchase_order_id,omitempty"`
	Metrics         model.PerformanceMetrics `json:"metrics"`
	Timestamp       time.Time                `json:"timestamp"`
}

// Publisher delivers performance events
type Publisher interface {
	Publish(ctx context.Context, event *PerformanceEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer used by KafkaPublisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes performance events to a Kafka topic keyed by vendor id,
// so events of one vendor stay ordered within a partition
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher for the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("at least one broker is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, topic: cfg.Topic}, nil
}

// Publish serializes the event and writes it synchronously
func (p *KafkaPublisher) Publish(ctx context.Context, event *PerformanceEvent) error {
	if event.EventType == "" {
		event.EventType = EventPerformanceUpdated
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to serialize performance event")
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.VendorID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "trigger", Value: []byte(event.Trigger)},
		},
		Time: event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "failed to publish to %s", p.topic)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *PerformanceEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
