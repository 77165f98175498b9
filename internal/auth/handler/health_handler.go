package handler

import (
	"context"
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/session-auth/internal/logging"
	"github.com/gofiber/fiber/v2"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log logging.Logger
	now func() time.Time
}

func NewHealthHandler(db Pinger, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &HealthHandler{db: db, log: log, now: time.Now}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	data := fiber.Map{"timestamp": h.now().UTC().Format(time.RFC3339)}

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn(ctx, "health check failed", "error", err.Error())
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Response{
			Status:  dto.StatusError,
			Code:    "UNAVAILABLE",
			Message: "Server: Database unreachable",
			Data:    data,
		})
	}

	return respondOK(c, fiber.StatusOK, "Server: Online", data)
}
