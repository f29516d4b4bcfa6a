package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
)

const channelPrefix = "events:"

// NewRedis creates a redis client; callers Ping before relying on it.
func NewRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	logger.L().Info("redis client created", zap.String("addr", addr))
	return rdb
}

func userChannel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// Publisher fans events out through redis so every API instance can reach the user's sockets.
type Publisher struct {
	RDB *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{RDB: rdb}
}

func (p *Publisher) Notify(ctx context.Context, event Event, userIDs ...uuid.UUID) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.L().Error("marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	for _, id := range userIDs {
		if err := p.RDB.Publish(ctx, userChannel(id), payload).Err(); err != nil {
			logger.L().Warn("publish event", zap.String("type", event.Type), zap.String("user", id.String()), zap.Error(err))
		}
	}
}

// Relay pattern-subscribes to user channels and hands payloads to the local hub
// until ctx is cancelled.
func Relay(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				logger.L().Warn("relay: bad channel", zap.String("channel", msg.Channel))
				continue
			}
			hub.Deliver(userID, []byte(msg.Payload))
		}
	}
}

// LocalNotifier delivers straight to the in-process hub. Used when redis is not wired.
type LocalNotifier struct {
	Hub *Hub
}

func (n LocalNotifier) Notify(_ context.Context, event Event, userIDs ...uuid.UUID) {
	for _, id := range userIDs {
		if !n.Hub.Connected(id) {
			logger.L().Debug("no local socket", zap.String("user", id.String()), zap.String("event", event.Type))
			continue
		}
		n.Hub.SendToUser(id, event)
	}
}
