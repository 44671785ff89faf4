package scheduling

import (
	"context"
	"time"

	"concierge/models"

	"github.com/go-redis/redis/v8"
)

const bookingGuardPrefix = "booking:slot:"

// BookingGuard keeps a short-lived record of slots this deployment has
// just committed, so a raced or replayed createAppointment does not insert
// the same event twice. It is advisory only: failures degrade to the plain
// re-check-then-commit protocol.
type BookingGuard interface {
	// Reserve claims the slot, returning false when another booking
	// already holds it.
	Reserve(ctx context.Context, slot models.TimeSlot) (bool, error)
	// Release frees a reservation after a failed commit.
	Release(ctx context.Context, slot models.TimeSlot) error
}

// RedisBookingGuard implements BookingGuard on a shared Redis.
type RedisBookingGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBookingGuard(client *redis.Client, ttl time.Duration) *RedisBookingGuard {
	return &RedisBookingGuard{client: client, ttl: ttl}
}

func guardKey(slot models.TimeSlot) string {
	return bookingGuardPrefix + slot.Start.UTC().Format(time.RFC3339)
}

func (g *RedisBookingGuard) Reserve(ctx context.Context, slot models.TimeSlot) (bool, error) {
	return g.client.SetNX(ctx, guardKey(slot), "1", g.ttl).Result()
}

func (g *RedisBookingGuard) Release(ctx context.Context, slot models.TimeSlot) error {
	return g.client.Del(ctx, guardKey(slot)).Err()
}
