package ratelimit

import (
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	MessageTooManyRequests = "Too many requests, slow down"
)

// New returns a fixed-window limiter allowing max requests per client IP in
// each window. Limiters with different names keep separate counters even when
// they share storage. A nil storage keeps counters in process memory.
func New(name string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Response{
				Status:  dto.StatusError,
				Code:    CodeTooManyRequests,
				Message: MessageTooManyRequests,
			})
		},
		Storage: storage,
	})
}
