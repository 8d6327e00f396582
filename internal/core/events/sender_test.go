package events

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"online-library/internal/domain"
)

type message struct {
	topic string
	key   string
	value []byte
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []message
	closed  bool
	failFor string

	started chan struct{} // signalled on every Send when non-nil
	release chan struct{} // Send waits on it when non-nil
}

func (f *fakeTransport) Send(ctx context.Context, topic string, key, value []byte) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if string(key) == f.failFor {
		return errors.New("broker unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message{topic: topic, key: string(key), value: value})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) messages() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.sent...)
}

func bookEvent(id int64, typ domain.EventType) domain.BookEvent {
	ev := domain.BookEvent{BookID: id, EventType: typ}
	if typ != domain.EventRemoved {
		ev.Book = &domain.Book{ID: id, Name: "Book " + strconv.FormatInt(id, 10), PageNumber: 10}
	}
	return ev
}

func TestSenderKeepsOrderPerBook(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(tr, Options{Partitions: 3}, zaptest.NewLogger(t))

	sequence := []domain.EventType{domain.EventCreated, domain.EventUpdated, domain.EventUpdated, domain.EventRemoved}
	for _, typ := range sequence {
		for id := int64(1); id <= 7; id++ {
			s.Publish(bookEvent(id, typ))
		}
	}
	require.NoError(t, s.Close())
	assert.True(t, tr.closed)

	byKey := map[string][]domain.EventType{}
	for _, m := range tr.messages() {
		assert.Equal(t, "books-topic", m.topic)
		var ev domain.BookEvent
		require.NoError(t, json.Unmarshal(m.value, &ev))
		assert.Equal(t, m.key, strconv.FormatInt(ev.BookID, 10))
		byKey[m.key] = append(byKey[m.key], ev.EventType)
	}
	require.Len(t, byKey, 7)
	for key, got := range byKey {
		assert.Equal(t, sequence, got, "book %s", key)
	}
}

func TestSenderPayloadShape(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(tr, Options{Topic: "library-events", Partitions: 1}, zaptest.NewLogger(t))
	s.Publish(bookEvent(42, domain.EventCreated))
	s.Publish(bookEvent(42, domain.EventRemoved))
	require.NoError(t, s.Close())

	msgs := tr.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "library-events", msgs[0].topic)
	assert.Equal(t, "42", msgs[0].key)
	assert.JSONEq(t,
		`{"bookId":42,"eventType":"CREATED","book":{"id":42,"name":"Book 42","authorId":null,"publicationYear":0,"pageNumber":10,"cost":0}}`,
		string(msgs[0].value))
	assert.JSONEq(t, `{"bookId":42,"eventType":"REMOVED"}`, string(msgs[1].value))
}

func TestSenderDropsWhenQueueFull(t *testing.T) {
	tr := &fakeTransport{started: make(chan struct{}, 8), release: make(chan struct{})}
	s := NewSender(tr, Options{Partitions: 1, QueueSize: 1, SendTimeout: 5 * time.Second}, zaptest.NewLogger(t))
	dropped := eventsTotal.WithLabelValues(string(domain.EventUpdated), "dropped")
	before := promtest.ToFloat64(dropped)

	s.Publish(bookEvent(1, domain.EventCreated))
	<-tr.started // worker is now stuck in Send

	s.Publish(bookEvent(2, domain.EventCreated)) // fills the only slot
	s.Publish(bookEvent(3, domain.EventUpdated)) // nowhere to go

	close(tr.release)
	require.NoError(t, s.Close())

	keys := []string{}
	for _, m := range tr.messages() {
		keys = append(keys, m.key)
	}
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, before+1, promtest.ToFloat64(dropped))
}

func TestSenderSwallowsSendFailure(t *testing.T) {
	tr := &fakeTransport{failFor: "5"}
	s := NewSender(tr, Options{Partitions: 2}, zaptest.NewLogger(t))
	failed := eventsTotal.WithLabelValues(string(domain.EventCreated), "failed")
	before := promtest.ToFloat64(failed)

	s.Publish(bookEvent(5, domain.EventCreated))
	s.Publish(bookEvent(6, domain.EventCreated))
	require.NoError(t, s.Close())

	msgs := tr.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "6", msgs[0].key)
	assert.Equal(t, before+1, promtest.ToFloat64(failed))
}

func TestSenderPublishAfterClose(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(tr, Options{}, zaptest.NewLogger(t))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.NotPanics(t, func() { s.Publish(bookEvent(1, domain.EventCreated)) })
	assert.Empty(t, tr.messages())
}
