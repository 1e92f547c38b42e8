package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/rankcache"
	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handlers struct {
	bot  Bot
	opts Options
	log  *zap.Logger
}

func NewHandlers(bot Bot, opts Options, log *zap.Logger) *Handlers {
	return &Handlers{bot: bot, opts: opts, log: log}
}

func (h *Handlers) health(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"health": "ok"})
}

func (h *Handlers) webhook(c *fiber.Ctx) error {
	var u domain.Update
	if err := c.BodyParser(&u); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()
	code, err := h.bot.HandleUpdate(ctx, u)
	if err != nil {
		h.log.Error("update failed", zap.Int64("update_id", u.UpdateID), zap.Error(err))
		return utils.JSONError(c, code, "update not processed")
	}
	return c.SendStatus(code)
}

func (h *Handlers) groups(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, h.bot.Overview())
}

func (h *Handlers) rank(c *fiber.Ctx) error {
	chatID, err := strconv.ParseInt(c.Params("chat_id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: chat_id %q", utils.ErrInvalidRequest, c.Params("chat_id"))
	}

	now := h.opts.Now()
	start, end := now.Add(-h.opts.Window).Unix(), now.Unix()
	if s := c.Query("start"); s != "" {
		if start, err = rankcache.ParseBound(s); err != nil {
			return err
		}
	}
	if s := c.Query("end"); s != "" {
		if end, err = rankcache.ParseBound(s); err != nil {
			return err
		}
	}

	r, err := h.bot.Ranking(chatID, time.Unix(start, 0), time.Unix(end, 0))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, r)
}

func (h *Handlers) maintenance(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, h.bot.Maintenance())
}
