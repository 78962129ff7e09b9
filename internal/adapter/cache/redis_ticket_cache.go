package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/flowlens/flowlens/internal/domain"
	"github.com/flowlens/flowlens/internal/ports"
)

const keyPrefix = "flowlens:tickets:"

// RedisTicketCache implements TicketCache on Redis. Each project's ticket
// set is stored as one JSON blob under a prefixed key with a TTL.
type RedisTicketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTicketCache creates a Redis-backed ticket cache.
func NewRedisTicketCache(client *redis.Client, ttl time.Duration) ports.TicketCache {
	return &RedisTicketCache{client: client, ttl: ttl}
}

// GetTickets returns the cached ticket set. A missing key is a miss, not
// an error.
func (c *RedisTicketCache) GetTickets(ctx context.Context, project string) ([]*domain.Ticket, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(project)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read ticket cache: %w", err)
	}

	var tickets []*domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached tickets: %w", err)
	}
	return tickets, true, nil
}

// SetTickets replaces the cached ticket set for a project.
func (c *RedisTicketCache) SetTickets(ctx context.Context, project string, tickets []*domain.Ticket) error {
	data, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("failed to encode tickets for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(project), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ticket cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached ticket set for a project.
func (c *RedisTicketCache) Invalidate(ctx context.Context, project string) error {
	if err := c.client.Del(ctx, cacheKey(project)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ticket cache: %w", err)
	}
	return nil
}

func cacheKey(project string) string {
	return keyPrefix + project
}
