package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const loginRateWindow = time.Minute

// LoginRateLimit caps login attempts per client IP per minute. Without a Redis
// client it is a pass-through.
func LoginRateLimit(cache *redis.Client, maxAttempts int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		key := fmt.Sprintf("login_rate:v1:%s", c.IP())
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			// Rate limiting is advisory; never block logins on a cache outage.
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, loginRateWindow)
		}
		if count > int64(maxAttempts) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		}

		return c.Next()
	}
}
