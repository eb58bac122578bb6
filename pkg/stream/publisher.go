package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/fraud"
)

// Config contains configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// ClientID identifies this producer to the brokers.
	// Default: "saturn"
	ClientID string

	// AlertTopic receives declined screening alerts.
	AlertTopic string

	// ViolationTopic receives cardinality guard events.
	ViolationTopic string

	// FlushTimeout bounds how long Close waits for in-flight messages.
	// Default: 5 seconds
	FlushTimeout time.Duration
}

// Alert is the message body published for a declined transaction.
type Alert struct {
	Transaction fraud.Transaction `json:"transaction"`
	Assessment  fraud.Assessment  `json:"assessment"`
	Time        time.Time         `json:"time"`
}

// Publisher publishes alerts and guard events to Kafka through an async
// producer. It also implements cardinality.Sink for guard events.
type Publisher struct {
	producer  sarama.AsyncProducer
	config    Config
	logger    *slog.Logger
	wg        sync.WaitGroup
	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewPublisher connects an async producer to the configured brokers.
func NewPublisher(config Config) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if config.ClientID == "" {
		config.ClientID = "saturn"
	}

	sc := sarama.NewConfig()
	sc.ClientID = config.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(config.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newPublisher(producer, config), nil
}

// newPublisher wraps an existing producer. Split out so tests can inject a
// mock producer.
func newPublisher(producer sarama.AsyncProducer, config Config) *Publisher {
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = 5 * time.Second
	}

	p := &Publisher{
		producer: producer,
		config:   config,
		logger:   slog.Default().With("component", "stream"),
	}

	p.wg.Add(1)
	go p.drain()

	p.logger.Info("kafka publisher started",
		"brokers", config.Brokers,
		"alert_topic", config.AlertTopic,
		"violation_topic", config.ViolationTopic,
	)

	return p
}

// PublishAlert publishes a declined screening result to the alert topic,
// keyed by card so alerts for one card stay ordered within a partition.
func (p *Publisher) PublishAlert(txn fraud.Transaction, assessment fraud.Assessment) error {
	body, err := json.Marshal(Alert{
		Transaction: txn,
		Assessment:  assessment,
		Time:        time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.config.AlertTopic,
		Key:   sarama.StringEncoder(txn.CardID),
		Value: sarama.ByteEncoder(body),
	}
	return nil
}

// Emit implements cardinality.Sink. The enqueue is non-blocking: when the
// producer's input buffer is full the event is dropped and counted.
func (p *Publisher) Emit(ev cardinality.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal guard event", "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.config.ViolationTopic,
		Key:   sarama.StringEncoder(ev.Metric),
		Value: sarama.ByteEncoder(body),
	}

	select {
	case p.producer.Input() <- msg:
	default:
		p.dropped.Add(1)
	}
}

// Published returns the number of messages acknowledged by the brokers.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

// Failed returns the number of messages the brokers rejected.
func (p *Publisher) Failed() int64 {
	return p.failed.Load()
}

// Dropped returns the number of guard events dropped on a full buffer.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close flushes in-flight messages and shuts the producer down. It returns an
// error if the flush does not finish within the configured timeout.
func (p *Publisher) Close() error {
	p.producer.AsyncClose()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.logger.Info("kafka publisher stopped",
			"published", p.published.Load(),
			"failed", p.failed.Load(),
			"dropped", p.dropped.Load(),
		)
		return nil
	case <-time.After(p.config.FlushTimeout):
		return fmt.Errorf("kafka publisher flush timed out after %s", p.config.FlushTimeout)
	}
}

// drain consumes producer acknowledgements until both result channels close.
func (p *Publisher) drain() {
	defer p.wg.Done()

	successes := p.producer.Successes()
	errors := p.producer.Errors()

	for successes != nil || errors != nil {
		select {
		case _, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			p.published.Add(1)

		case perr, ok := <-errors:
			if !ok {
				errors = nil
				continue
			}
			p.failed.Add(1)
			p.logger.Error("kafka publish failed",
				"topic", perr.Msg.Topic,
				"error", perr.Err,
			)
		}
	}
}
