package service

import (
	"context"
	"fmt"
	"math"

	"github.com/fathima-sithara/jungbot/internal/cache"
	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/metrics"
	"github.com/fathima-sithara/jungbot/internal/report"
	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/fathima-sithara/jungbot/internal/workday"
	"go.uber.org/zap"
)

// Execute runs one queued job.
func (b *Bot) Execute(ctx context.Context, job domain.Job) error {
	err := b.execute(ctx, job)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.JobsExecuted.WithLabelValues(string(job.Action), result).Inc()
	return err
}

func (b *Bot) execute(ctx context.Context, job domain.Job) error {
	if job.ChatTitle == "" {
		job.ChatTitle = b.chatTitle(job.ChatID)
	}

	switch job.Action {
	case domain.ActionTopTen:
		return b.guardedReport(ctx, job, report.Top)
	case domain.ActionTopDiver:
		return b.guardedReport(ctx, job, report.Diver)
	case domain.ActionAllJung:
		return b.guardedReport(ctx, job, report.All)
	case domain.ActionOffFromWork:
		text, err := b.renderReport(job.ChatID, report.Top)
		if err != nil {
			return err
		}
		return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.OffFromWork+"\n\n"+text)
	case domain.ActionJungHelp:
		return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.Help(job.ChatTitle))
	case domain.ActionEnableAll, domain.ActionDisableAll:
		return b.adminOnly(ctx, job, func() error {
			enabled := job.Action == domain.ActionEnableAll
			if err := b.deps.Settings.SetAllJung(ctx, job.ChatID, enabled); err != nil {
				return err
			}
			return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.AllJungToggled(job.ChatTitle, enabled))
		})
	case domain.ActionSetOffTime:
		return b.adminOnly(ctx, job, func() error {
			days, err := workday.Parse(job.Workday)
			if err != nil {
				return err
			}
			if err := b.deps.Settings.SetOffTime(ctx, job.ChatID, job.OffTime, days); err != nil {
				return err
			}
			return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.OffTimeUpdated(job.ChatTitle, job.OffTime, days.String()))
		})
	case domain.ActionBadOffFormat:
		return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.BadOffFormat(job.ChatTitle))
	default:
		return fmt.Errorf("%w: %q", utils.ErrUnknownAction, job.Action)
	}
}

func (b *Bot) guardedReport(ctx context.Context, job domain.Job, kind report.Kind) error {
	d, retryIn, err := b.deps.Cooldown.Acquire(ctx, job.ChatID)
	if err != nil {
		return fmt.Errorf("cooldown: %w", err)
	}
	switch d {
	case cache.DeniedNotify:
		metrics.CooldownRejected.Inc()
		secs := int(math.Ceil(retryIn.Seconds()))
		return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.Cooldown(secs))
	case cache.DeniedSilent:
		metrics.CooldownRejected.Inc()
		return nil
	}

	if kind == report.All {
		enabled, err := b.deps.Settings.AllJungEnabled(ctx, job.ChatID)
		if err != nil {
			return err
		}
		if !enabled {
			return b.deps.Messenger.SendMessage(ctx, job.ChatID, report.AllJungDisabled(job.ChatTitle))
		}
	}

	text, err := b.renderReport(job.ChatID, kind)
	if err != nil {
		return err
	}
	return b.deps.Messenger.SendMessage(ctx, job.ChatID, text)
}

func (b *Bot) renderReport(chatID int64, kind report.Kind) (string, error) {
	r, err := b.WindowRanking(chatID)
	if err != nil {
		return "", err
	}
	return report.Render(kind, r, b.opts.Now(), b.opts.TopLimit), nil
}

// adminOnly runs fn when the job's sender administers the chat. Anyone
// else is ignored without a reply.
func (b *Bot) adminOnly(ctx context.Context, job domain.Job, fn func() error) error {
	ok, err := b.deps.Messenger.IsAdmin(ctx, job.ChatID, job.UserID)
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if !ok {
		b.log.Info("ignoring admin command from non-admin",
			zap.String("action", string(job.Action)),
			zap.Int64("chat_id", job.ChatID),
			zap.Int64("user_id", job.UserID))
		return nil
	}
	return fn()
}
