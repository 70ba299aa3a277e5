package outbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig tunes the writers the producer creates per topic.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks string // "all", "one", or "none"
	BatchTimeout time.Duration
}

// KafkaProducer publishes event batches, creating one writer per topic on
// first use. Messages are hash-balanced on their key so all events for one
// user stay on one partition and arrive in order.
type KafkaProducer struct {
	cfg  ProducerConfig
	acks kafka.RequiredAcks

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer from config.
func NewKafkaProducer(cfg ProducerConfig) *KafkaProducer {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = time.Second
	}
	return &KafkaProducer{
		cfg:     cfg,
		acks:    parseRequiredAcks(cfg.RequiredAcks),
		writers: make(map[string]*kafka.Writer),
	}
}

// parseRequiredAcks maps the config string to a kafka-go acks level.
// Anything unrecognised falls back to requiring all replicas.
func parseRequiredAcks(value string) kafka.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "one":
		return kafka.RequireOne
	case "none":
		return kafka.RequireNone
	default:
		return kafka.RequireAll
	}
}

// Publish writes messages to the given topic.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerFor(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerFor(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	writer, ok := p.writers[topic]
	if !ok {
		writer = &kafka.Writer{
			Addr:         kafka.TCP(p.cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: p.acks,
			BatchTimeout: p.cfg.BatchTimeout,
			Compression:  kafka.Snappy,
		}
		p.writers[topic] = writer
	}
	return writer
}

// Close releases all writers, reporting the first failure.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
