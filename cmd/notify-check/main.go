// Command notify-check verifies the Telegram settings used for production
// schedule alerts and can send a sample alert to the configured chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjm-manufacturing/core1-backend/internal/config"
	"github.com/jjm-manufacturing/core1-backend/internal/logging"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
)

// botAPI is the part of the bot client the check needs.
type botAPI interface {
	services.MessageSender
	GetMe(ctx context.Context) (*tgmodels.User, error)
}

var (
	errMissingToken  = errors.New("TELEGRAM_BOT_TOKEN is not configured")
	errMissingChatID = errors.New("telegram.chat_id is not configured")
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		send    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "notify-check",
		Short:         "Verify the Telegram bot used for production schedule alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := logging.New(cfg.LogLevel, cfg.Environment)

			if cfg.Telegram.BotToken == "" {
				return errMissingToken
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			b, err := bot.New(cfg.Telegram.BotToken)
			if err != nil {
				return fmt.Errorf("failed to create Telegram bot: %w", err)
			}

			return check(ctx, b, cfg.Telegram, send, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Send a sample delayed-schedule alert to the configured chat")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Bot API timeout")

	return cmd
}

func check(ctx context.Context, api botAPI, cfg config.TelegramConfig, send bool, out io.Writer, logger logrus.FieldLogger) error {
	fmt.Fprintf(out, "✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.BotToken))

	me, err := api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	fmt.Fprintf(out, "✅ Bot API connection successful: @%s (id %d)\n", me.Username, me.ID)

	if cfg.ChatID == 0 {
		if send {
			return errMissingChatID
		}
		fmt.Fprintln(out, "⚠️  telegram.chat_id is not configured, schedule alerts are disabled")
		return nil
	}
	fmt.Fprintf(out, "✅ Alerts go to chat %d\n", cfg.ChatID)

	if !send {
		return nil
	}

	notifier := services.NewScheduleNotifier(api, cfg.ChatID, logger)
	_, err = api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    cfg.ChatID,
		Text:      notifier.FormatScheduleAlert(sampleSchedule(time.Now())),
		ParseMode: services.AlertParseMode,
	})
	if err != nil {
		return fmt.Errorf("failed to send sample alert: %w", err)
	}
	fmt.Fprintln(out, "✅ Sample alert sent")
	return nil
}

func sampleSchedule(now time.Time) *models.ProductionSchedule {
	description := "Sample alert from notify-check"
	return &models.ProductionSchedule{
		ID:          "00000000-0000-0000-0000-000000000000",
		Status:      models.ScheduleDelayed,
		Description: &description,
		Start:       now,
		End:         now.AddDate(0, 0, 7),
	}
}
