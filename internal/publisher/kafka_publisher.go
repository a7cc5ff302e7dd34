package publisher

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "storefront-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	BatchSize    int
	WriteTimeout time.Duration
}

// Publisher forwards storefront events to Kafka. Emit never blocks: events are queued and
// written by Run, and dropped when the queue is full.
type Publisher struct {
	writer       messageWriter
	queue        chan domain.Event
	batchSize    int
	writeTimeout time.Duration
	log          *logger.Logger

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewPublisher(cfg Config, log *logger.Logger) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}
	return newPublisher(w, cfg, log)
}

func newPublisher(w messageWriter, cfg Config, log *logger.Logger) *Publisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{
		writer:       w,
		queue:        make(chan domain.Event, cfg.QueueSize),
		batchSize:    cfg.BatchSize,
		writeTimeout: cfg.WriteTimeout,
		log:          log.With("component", "publisher"),
	}
}

func (p *Publisher) Emit(e domain.Event) {
	select {
	case p.queue <- e:
	default:
		n := p.dropped.Add(1)
		p.log.Warn("event queue full, dropping event", "type", string(e.Type), "session_id", e.SessionID, "dropped_total", n)
	}
}

func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case e := <-p.queue:
			p.publish(ctx, p.collect(e))
		case <-ctx.Done():
			p.drain()
			return
		}
	}
}

// collect takes first plus whatever else is already queued, up to batchSize.
func (p *Publisher) collect(first domain.Event) []domain.Event {
	batch := []domain.Event{first}
	for len(batch) < p.batchSize {
		select {
		case e := <-p.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	for {
		select {
		case e := <-p.queue:
			p.publish(ctx, p.collect(e))
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, batch []domain.Event) {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, e := range batch {
		value, err := json.Marshal(e)
		if err != nil {
			p.log.Error("failed to marshal event", "type", string(e.Type), "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.SessionID), // per-session ordering
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
			},
		})
	}
	if len(msgs) == 0 {
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		p.failed.Add(int64(len(msgs)))
		p.log.Error("failed to publish events", "count", len(msgs), "error", err)
		return
	}
	p.published.Add(int64(len(msgs)))
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

type Stats struct {
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
	Queued    int   `json:"queued"`
}

func (p *Publisher) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
		Queued:    len(p.queue),
	}
}
