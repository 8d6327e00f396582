package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaTransport writes to Kafka with the message key hashed onto a
// partition, so one book's events land on one partition.
type KafkaTransport struct{ w *kafka.Writer }

func NewKafkaTransport(brokers []string) *KafkaTransport {
	return &KafkaTransport{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (t *KafkaTransport) Send(ctx context.Context, topic string, key, value []byte) error {
	return t.w.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: value})
}

func (t *KafkaTransport) Close() error { return t.w.Close() }

// RedisTransport appends to a Redis stream named after the topic.
type RedisTransport struct {
	rdb    *redis.Client
	maxLen int64
}

func NewRedisTransport(rdb *redis.Client, maxLen int64) *RedisTransport {
	return &RedisTransport{rdb: rdb, maxLen: maxLen}
}

func (t *RedisTransport) Send(ctx context.Context, topic string, key, value []byte) error {
	return t.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: t.maxLen,
		Approx: t.maxLen > 0,
		Values: map[string]any{"key": key, "value": value},
	}).Err()
}

func (t *RedisTransport) Close() error { return t.rdb.Close() }

// LogTransport only logs; used when no broker is configured.
type LogTransport struct{ log *zap.Logger }

func NewLogTransport(log *zap.Logger) *LogTransport { return &LogTransport{log: log} }

func (t *LogTransport) Send(_ context.Context, topic string, key, value []byte) error {
	t.log.Info("book event",
		zap.String("topic", topic),
		zap.ByteString("key", key),
		zap.ByteString("value", value),
	)
	return nil
}

func (t *LogTransport) Close() error { return nil }

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
