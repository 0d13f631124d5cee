package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// defaultRetention keeps day buckets around long enough for weekly
// dashboards.
const defaultRetention = 14 * 24 * time.Hour

// RedisSink counts events in day-bucketed Redis keys. The sink is
// write-only from the bot's perspective; dashboards read the keys.
type RedisSink struct {
	client    *redis.Client
	retention time.Duration
	clock     func() time.Time
}

// NewRedisSink creates a Redis-backed counter sink.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{
		client:    client,
		retention: defaultRetention,
		clock:     time.Now,
	}
}

// Record increments the day bucket for the event kind. Redis errors are
// logged and dropped; analytics never affects delivery.
func (s *RedisSink) Record(ctx context.Context, event domain.FlightEvent) {
	key := buildKey(event.Kind, s.clock())

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: redis pipeline failed for %s: %v", key, err)
	}
}

func buildKey(kind domain.EventKind, t time.Time) string {
	return fmt.Sprintf("fw:events:%s:%s", kind, t.UTC().Format("20060102"))
}
