package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaConfig holds the Kafka feed settings.
type KafkaConfig struct {
	Brokers      string
	Topic        string
	GroupID      string
	SASLUsername string
	SASLPassword string
}

// Kafka is a feed on a single topic keyed by email. One reader per process
// consumes the topic and fans changes out to local subscribers.
type Kafka struct {
	brokers []string
	topic   string
	groupID string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	local   *Memory
	logger  *slog.Logger

	mu     sync.Mutex
	reader *kafka.Reader
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKafka(cfg KafkaConfig, logger *slog.Logger) (*Kafka, error) {
	brokers := parseBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka feed: brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka feed: topic is required")
	}
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
	}
	if cfg.SASLUsername != "" {
		mechanism := plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}
		dialer.SASLMechanism = mechanism
		writer.Transport = &kafka.Transport{SASL: mechanism}
	}

	k := &Kafka{
		brokers: brokers,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		writer:  writer,
		dialer:  dialer,
		logger:  logger.With("feed", "kafka"),
	}
	k.local = NewMemory(k.logger)
	return k, nil
}

func (k *Kafka) Publish(ctx context.Context, ch remote.Change) error {
	payload, err := encode(ch)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(domain.NormalizeEmail(ch.Email)),
		Value: payload,
		Time:  time.Now(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka feed: publish failed: %w", err)
	}
	return nil
}

// Subscribe registers fn locally and starts the topic reader on first use.
func (k *Kafka) Subscribe(ctx context.Context, email string, fn func(remote.Change)) (func(), error) {
	unsubscribe, err := k.local.Subscribe(ctx, email, fn)
	if err != nil {
		return nil, err
	}
	k.ensureReader()
	return unsubscribe, nil
}

func (k *Kafka) ensureReader() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.reader != nil {
		return
	}
	cfg := kafka.ReaderConfig{
		Brokers:  k.brokers,
		Topic:    k.topic,
		GroupID:  k.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
		Dialer:   k.dialer,
	}
	if k.groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	k.reader = kafka.NewReader(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.consume(ctx, k.reader)
	}()
}

func (k *Kafka) consume(ctx context.Context, reader *kafka.Reader) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			k.logger.Error("kafka consume error", "topic", k.topic, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		ch, err := decode(msg.Value)
		if err != nil {
			k.logger.Error("dropping malformed message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}
		_ = k.local.Publish(ctx, ch)
	}
}

// Close stops the reader and flushes the writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	reader, cancel := k.reader, k.cancel
	k.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	var errs []error
	if reader != nil {
		errs = append(errs, reader.Close())
	}
	k.wg.Wait()
	errs = append(errs, k.writer.Close())
	return errors.Join(errs...)
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

var _ remote.Feed = (*Kafka)(nil)
