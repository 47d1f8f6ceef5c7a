package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/config"
)

const channelPrefix = "notifications:"

// Channel is the pub/sub channel carrying a user's events.
func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func NewRedis(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Publisher fans events out through redis so every API instance can reach its
// own websocket sessions. When redis is unavailable the breaker opens and
// events go to the local hub only.
type Publisher struct {
	rdb      *redis.Client
	cb       *gobreaker.CircuitBreaker
	fallback Notifier
	log      *zap.Logger
}

func NewPublisher(rdb *redis.Client, fallback Notifier, log *zap.Logger) *Publisher {
	if fallback == nil {
		fallback = Nop{}
	}
	settings := gobreaker.Settings{
		Name:        "redis-notifications",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Publisher{rdb: rdb, cb: gobreaker.NewCircuitBreaker(settings), fallback: fallback, log: log}
}

func (p *Publisher) Notify(ctx context.Context, ev Event, userIDs ...uuid.UUID) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("failed to marshal event", zap.Error(err), zap.String("type", ev.Type))
		return
	}

	for _, id := range userIDs {
		_, err := p.cb.Execute(func() (interface{}, error) {
			return nil, p.rdb.Publish(ctx, Channel(id), payload).Err()
		})
		if err != nil {
			p.log.Warn("publish failed, delivering locally",
				zap.Error(err),
				zap.String("type", ev.Type),
				zap.String("user_id", id.String()),
			)
			p.fallback.Notify(ctx, ev, id)
		}
	}
}

// State exposes the breaker state for health reporting.
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// Bridge forwards events published on redis to sessions held by the local hub.
type Bridge struct {
	rdb *redis.Client
	hub *Hub
	log *zap.Logger

	// subscribe is Run unless replaced in tests.
	subscribe func(ctx context.Context, ready chan<- struct{}) error
}

func NewBridge(rdb *redis.Client, hub *Hub, log *zap.Logger) *Bridge {
	b := &Bridge{rdb: rdb, hub: hub, log: log}
	b.subscribe = b.Run
	return b
}

// Supervise keeps the bridge subscribed until ctx is cancelled, waiting retry
// before every resubscription whether the last attempt failed or its
// subscription was closed.
func (b *Bridge) Supervise(ctx context.Context, retry time.Duration) {
	for {
		err := b.subscribe(ctx, nil)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			b.log.Warn("notification bridge stopped, resubscribing", zap.Error(err), zap.Duration("retry", retry))
		} else {
			b.log.Warn("notification subscription closed, resubscribing", zap.Duration("retry", retry))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

// Run consumes notifications until ctx is cancelled. ready, when non-nil, is
// closed once the subscription is confirmed.
func (b *Bridge) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				b.log.Warn("ignoring notification on unexpected channel", zap.String("channel", msg.Channel))
				continue
			}
			b.hub.SendToUser(userID, []byte(msg.Payload))
		}
	}
}
