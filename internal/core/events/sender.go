package events

import (
	"context"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"online-library/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var eventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "book_events_total", Help: "Book events by outcome"},
	[]string{"event_type", "result"},
)

func init() { prometheus.MustRegister(eventsTotal) }

// Transport moves one encoded event to the broker.
type Transport interface {
	Send(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

type Options struct {
	Topic       string
	Partitions  int           // worker queues; events for one book always share a queue
	QueueSize   int           // per-queue buffer; a full queue drops the event
	SendTimeout time.Duration // per-message transport deadline
}

func (o Options) withDefaults() Options {
	if o.Topic == "" {
		o.Topic = "books-topic"
	}
	if o.Partitions <= 0 {
		o.Partitions = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 5 * time.Second
	}
	return o
}

// Sender publishes book events at most once. Publish returns immediately;
// delivery happens on per-partition workers so events of the same book are
// sent in the order they were published.
type Sender struct {
	opts Options
	tr   Transport
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
	queues []chan domain.BookEvent
	wg     sync.WaitGroup
}

func NewSender(tr Transport, opts Options, log *zap.Logger) *Sender {
	opts = opts.withDefaults()
	s := &Sender{
		opts:   opts,
		tr:     tr,
		log:    log.With(zap.String("topic", opts.Topic)),
		queues: make([]chan domain.BookEvent, opts.Partitions),
	}
	for i := range s.queues {
		q := make(chan domain.BookEvent, opts.QueueSize)
		s.queues[i] = q
		s.wg.Add(1)
		go s.run(q)
	}
	return s
}

func (s *Sender) Publish(ev domain.BookEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop(ev, "sender closed")
		return
	}
	select {
	case s.queues[s.partition(ev.BookID)] <- ev:
	default:
		s.drop(ev, "queue full")
	}
}

// Close stops accepting events, flushes queued ones and closes the transport.
func (s *Sender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, q := range s.queues {
		close(q)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return s.tr.Close()
}

func (s *Sender) partition(bookID int64) int {
	p := bookID % int64(len(s.queues))
	if p < 0 {
		p = -p
	}
	return int(p)
}

func (s *Sender) run(q <-chan domain.BookEvent) {
	defer s.wg.Done()
	for ev := range q {
		s.send(ev)
	}
}

func (s *Sender) send(ev domain.BookEvent) {
	fields := []zap.Field{
		zap.Int64("book_id", ev.BookID),
		zap.String("event_type", string(ev.EventType)),
	}
	value, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("encode event failed", append(fields, zap.Error(err))...)
		eventsTotal.WithLabelValues(string(ev.EventType), "failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SendTimeout)
	defer cancel()

	s.log.Info("sending event", fields...)
	if err := s.tr.Send(ctx, s.opts.Topic, []byte(strconv.FormatInt(ev.BookID, 10)), value); err != nil {
		s.log.Error("send event failed", append(fields, zap.Error(err))...)
		eventsTotal.WithLabelValues(string(ev.EventType), "failed").Inc()
		return
	}
	eventsTotal.WithLabelValues(string(ev.EventType), "sent").Inc()
	s.log.Debug("event sent", fields...)
}

func (s *Sender) drop(ev domain.BookEvent, reason string) {
	s.log.Warn("event dropped",
		zap.Int64("book_id", ev.BookID),
		zap.String("event_type", string(ev.EventType)),
		zap.String("reason", reason),
	)
	eventsTotal.WithLabelValues(string(ev.EventType), "dropped").Inc()
}
