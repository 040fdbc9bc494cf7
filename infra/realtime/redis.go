package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/redis/go-redis/v9"
)

// Redis is a feed on Redis pub/sub with one channel per email.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis connects to url (e.g. "redis://localhost:6379/0"). Channels are
// named "<prefix>:<email>".
func NewRedis(url, prefix string, logger *slog.Logger) (*Redis, error) {
	if url == "" || prefix == "" {
		return nil, fmt.Errorf("redis feed: url and channel prefix are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis feed: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis feed: connection failed: %w", err)
	}
	return &Redis{client: client, prefix: prefix, logger: logger.With("feed", "redis")}, nil
}

func (r *Redis) channel(email string) string {
	return r.prefix + ":" + domain.NormalizeEmail(email)
}

func (r *Redis) Publish(ctx context.Context, ch remote.Change) error {
	payload, err := encode(ch)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel(ch.Email), payload).Err(); err != nil {
		return fmt.Errorf("redis feed: publish failed: %w", err)
	}
	r.logger.Debug("change published", "email", ch.Email)
	return nil
}

// Subscribe returns once the subscription is confirmed by the server.
func (r *Redis) Subscribe(ctx context.Context, email string, fn func(remote.Change)) (func(), error) {
	channel := r.channel(email)
	ps := r.client.Subscribe(context.WithoutCancel(ctx), channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis feed: subscribe %s: %w", channel, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ps.Channel() {
			ch, err := decode([]byte(msg.Payload))
			if err != nil {
				r.logger.Error("dropping malformed message", "channel", msg.Channel, "error", err)
				continue
			}
			r.deliver(fn, ch)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				r.logger.Warn("failed to close subscription", "channel", channel, "error", err)
			}
			wg.Wait()
		})
	}, nil
}

func (r *Redis) deliver(fn func(remote.Change), ch remote.Change) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic recovered in change handler", "email", ch.Email, "panic", p)
		}
	}()
	fn(ch)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ remote.Feed = (*Redis)(nil)
