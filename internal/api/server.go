package api

import (
	"context"
	"errors"
	"time"

	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/metrics"
	"github.com/fathima-sithara/jungbot/internal/middleware"
	"github.com/fathima-sithara/jungbot/internal/rankcache"
	"github.com/fathima-sithara/jungbot/internal/service"
	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Bot interface {
	HandleUpdate(ctx context.Context, u domain.Update) (int, error)
	Ranking(chatID int64, from, to time.Time) (rankcache.Ranking, error)
	Overview() service.Overview
	Maintenance() rankcache.Stats
}

type Options struct {
	WebhookSecret string
	JWTSecret     string
	Window        time.Duration
	Now           func() time.Time
	// RateLimit guards the webhook; nil disables it.
	RateLimit  fiber.Handler
	RequestLog bool
}

func NewServer(opts Options, bot Bot, log *zap.Logger) *fiber.App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}

	h := NewHandlers(bot, opts, log)

	app.Get("/health", h.health)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	hook := []fiber.Handler{middleware.TelegramSecret(opts.WebhookSecret)}
	if opts.RateLimit != nil {
		hook = append(hook, opts.RateLimit)
	}
	app.Post("/webhook", append(hook, h.webhook)...)

	admin := app.Group("/v1/admin", middleware.NewJWTMiddleware(opts.JWTSecret, log).Handler())
	admin.Get("/groups", h.groups)
	admin.Get("/groups/:chat_id/rank", h.rank)
	admin.Post("/maintenance", h.maintenance)

	return app
}

// errorHandler renders handler errors. Invalid windows and bounds are the
// caller's fault.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		switch {
		case errors.Is(err, rankcache.ErrPrecondition), errors.Is(err, utils.ErrInvalidRequest):
			return utils.JSONError(c, fiber.StatusBadRequest, err.Error())
		case errors.As(err, &fe):
			return utils.JSONError(c, fe.Code, fe.Message)
		}
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return utils.JSONError(c, fiber.StatusInternalServerError, "internal error")
	}
}
