package cache

import (
	"context"
	"fmt"

	"flashdeck/internal/logger"

	"github.com/redis/go-redis/v9"
)

type RedisNotifier struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisNotifier(addr string, log *logger.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisNotifier{client: client, log: log.With("service", "RedisNotifier")}, nil
}

func dashboardKey(userID string) string {
	return "views:dashboard:" + userID
}

func deckKey(userID string, deckID int64) string {
	return fmt.Sprintf("views:deck:%s:%d", userID, deckID)
}

// An invalidation failure never fails the mutation that triggered it;
// the view just stays cached until its TTL runs out.
func (n *RedisNotifier) InvalidateDashboard(ctx context.Context, userID string) error {
	if err := n.client.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		n.log.Warn("dashboard invalidation failed", "user_id", userID, "error", err)
	}
	return nil
}

func (n *RedisNotifier) InvalidateDeck(ctx context.Context, userID string, deckID int64) error {
	if err := n.client.Del(ctx, deckKey(userID, deckID), dashboardKey(userID)).Err(); err != nil {
		n.log.Warn("deck invalidation failed", "user_id", userID, "deck_id", deckID, "error", err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
