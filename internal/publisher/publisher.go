package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/fjod/go_cart/grocery-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrQueueFull = errors.New("order event queue is full")
	ErrStopped   = errors.New("order event publisher is stopped")
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	WriteTimeout time.Duration
}

// KafkaPublisher queues order events and writes them to Kafka from a background
// loop, so a slow or unavailable broker never delays an order response. Writes
// go through a circuit breaker that stops hammering a broker that keeps failing.
type KafkaPublisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	queue   chan kafka.Message
	timeout time.Duration

	mu      sync.RWMutex // guards stopped against in-flight enqueues
	stopped bool
}

func NewKafkaPublisher(cfg Config) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, cfg)
}

func newKafkaPublisher(w MessageWriter, cfg Config) *KafkaPublisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &KafkaPublisher{
		writer:  w,
		breaker: breaker,
		queue:   make(chan kafka.Message, cfg.QueueSize),
		timeout: cfg.WriteTimeout,
	}
}

// Publish enqueues the order event without blocking.
func (p *KafkaPublisher) Publish(_ context.Context, order domain.Order) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.UserID), // per-user ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
			{Key: "reference", Value: []byte(order.Reference.String())},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run writes queued events until ctx is done. It then refuses new events and
// flushes whatever is still queued, each write bounded by the write timeout.
func (p *KafkaPublisher) Run(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			p.write(ctx, msg)
		case <-ctx.Done():
			p.stop()
			p.flush(context.WithoutCancel(ctx))
			return
		}
	}
}

func (p *KafkaPublisher) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

func (p *KafkaPublisher) flush(ctx context.Context) {
	flushed := 0
	for {
		select {
		case msg := <-p.queue:
			p.write(ctx, msg)
			flushed++
		default:
			if flushed > 0 {
				logger.Info().Int("events", flushed).Msg("flushed queued order events on shutdown")
			}
			return
		}
	}
}

func (p *KafkaPublisher) write(ctx context.Context, msg kafka.Message) {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return struct{}{}, p.writer.WriteMessages(writeCtx, msg)
	})
	if err != nil {
		logger.Error().Err(err).Str("key", string(msg.Key)).Msg("failed to publish order event")
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.Order) error {
	return nil
}
