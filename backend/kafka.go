package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

// Kafka publishes JSON-encoded events to a Kafka topic. Events are
// batched locally and handed to the writer when the batch fills or on
// flush, keeping per-event work inside the delivery loop minimal.
type Kafka struct {
	brokers      []string
	topic        string
	batchSize    int
	writeTimeout time.Duration
	writer       *kafka.Writer
	encoder      *format.JSONFormatter
	pending      []kafka.Message
}

// KafkaConfig holds configuration for the Kafka backend
type KafkaConfig struct {
	// Brokers is the bootstrap broker list (required)
	Brokers []string
	// Topic is the destination topic (required)
	Topic string
	// BatchSize is the local batch size before publishing (default: 100)
	BatchSize int
	// WriteTimeout bounds each publish call (default: 10s)
	WriteTimeout time.Duration
}

// NewKafka creates a Kafka backend; the writer is built in Init
func NewKafka(cfg KafkaConfig) *Kafka {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Kafka{
		brokers:      cfg.Brokers,
		topic:        cfg.Topic,
		batchSize:    cfg.BatchSize,
		writeTimeout: cfg.WriteTimeout,
		encoder:      format.NewJSONFormatter(format.Config{}),
	}
}

// Init validates the target and builds the writer. The "topic" init
// argument overrides the configured topic; an empty broker list
// declines startup with ErrIgnore.
func (k *Kafka) Init(opts map[string]interface{}) error {
	if t, ok := opts["topic"].(string); ok {
		k.topic = t
	}
	if len(k.brokers) == 0 {
		return ErrIgnore
	}
	if k.topic == "" {
		return fmt.Errorf("kafka backend requires a topic")
	}

	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.brokers...),
		Topic:        k.topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    k.batchSize,
	}
	k.pending = make([]kafka.Message, 0, k.batchSize)
	return nil
}

// HandleEvent appends the encoded event to the local batch and
// publishes when the batch is full.
func (k *Kafka) HandleEvent(ev *core.Event) error {
	if k.writer == nil {
		return fmt.Errorf("kafka backend not initialized")
	}
	value, err := k.encoder.Format(ev)
	if err != nil {
		return err
	}
	k.pending = append(k.pending, kafka.Message{
		Key:   []byte(ev.Origin),
		Value: value,
		Time:  ev.Time,
	})
	if len(k.pending) >= k.batchSize {
		return k.publish()
	}
	return nil
}

// HandleCall accepts the string "pending" and replies with the number
// of locally batched messages.
func (k *Kafka) HandleCall(req interface{}) (interface{}, error) {
	if r, ok := req.(string); ok && r == "pending" {
		return len(k.pending), nil
	}
	return nil, errUnsupported(req)
}

// Flush publishes the local batch
func (k *Kafka) Flush() error {
	if k.writer == nil {
		return nil
	}
	return k.publish()
}

// Terminate publishes what is left and closes the writer
func (k *Kafka) Terminate(error) {
	if k.writer == nil {
		return
	}
	k.publish()
	k.writer.Close()
	k.writer = nil
}

func (k *Kafka) publish() error {
	if len(k.pending) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), k.writeTimeout)
	defer cancel()

	err := k.writer.WriteMessages(ctx, k.pending...)
	k.pending = k.pending[:0]
	return err
}
