package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	domain "github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AlertParseMode is the Telegram parse mode FormatScheduleAlert renders for.
const AlertParseMode = models.ParseModeMarkdown

// MessageSender is the subset of the Telegram bot API used for alerts.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// ScheduleNotifier alerts the operations chat when a production schedule slips.
type ScheduleNotifier struct {
	sender MessageSender
	chatID int64
	logger logrus.FieldLogger
}

// NewScheduleNotifier returns a notifier. A nil sender or zero chat ID makes
// every call a no-op.
func NewScheduleNotifier(sender MessageSender, chatID int64, logger logrus.FieldLogger) *ScheduleNotifier {
	return &ScheduleNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// NewTelegramSender connects to the bot API. It returns nil when token is empty.
func NewTelegramSender(token string) (MessageSender, error) {
	if token == "" {
		return nil, nil
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

func (n *ScheduleNotifier) Enabled() bool {
	return n != nil && n.sender != nil && n.chatID != 0
}

// NotifySchedule sends an alert if schedule needs attention. Errors are
// logged, never returned: alerts must not fail the request that triggered them.
func (n *ScheduleNotifier) NotifySchedule(ctx context.Context, schedule *domain.ProductionSchedule) {
	if !n.Enabled() || schedule == nil || !schedule.Status.NeedsAttention() {
		return
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      n.FormatScheduleAlert(schedule),
		ParseMode: AlertParseMode,
	})
	if err != nil {
		n.logger.WithError(err).WithField("schedule_id", schedule.ID).Warn("Failed to send schedule alert")
		return
	}

	n.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"status":      schedule.Status,
	}).Info("Schedule alert sent")
}

// StatusLabel renders BEHIND_SCHEDULE as "Behind Schedule".
func (n *ScheduleNotifier) StatusLabel(status domain.ScheduleStatus) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(string(status)), "_", " "))
}

// FormatScheduleAlert renders the alert as MarkdownV2. Schedule IDs are
// UUIDs and need no escaping inside the code span.
func (n *ScheduleNotifier) FormatScheduleAlert(s *domain.ProductionSchedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Production schedule %s*\n\n", bot.EscapeMarkdown(n.StatusLabel(s.Status)))
	if s.Description != nil && *s.Description != "" {
		fmt.Fprintf(&b, "%s\n", bot.EscapeMarkdown(*s.Description))
	}
	fmt.Fprintf(&b, "Window: %s to %s\n",
		bot.EscapeMarkdown(s.Start.Format(time.DateOnly)), bot.EscapeMarkdown(s.End.Format(time.DateOnly)))
	fmt.Fprintf(&b, "Work orders: %d\n", len(s.WorkOrders))
	fmt.Fprintf(&b, "Schedule ID: `%s`", s.ID)
	return b.String()
}
