package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjm-manufacturing/core1-backend/internal/cache"
	"github.com/jjm-manufacturing/core1-backend/internal/config"
	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/llm"
	"github.com/jjm-manufacturing/core1-backend/internal/metrics"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
)

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, account *models.Account) (bool, error)
}

// seedAdmin creates the configured admin account on first start. It is a
// no-op when no admin credentials are configured.
func seedAdmin(ctx context.Context, seeder adminSeeder, sec config.SecurityConfig, logger logrus.FieldLogger) error {
	email := strings.ToLower(strings.TrimSpace(sec.AdminEmail))
	if email == "" || sec.AdminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sec.AdminPassword), sec.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	created, err := seeder.EnsureAdmin(ctx, &models.Account{
		Name:         sec.AdminName,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if created {
		logger.WithField("email", email).Info("Seeded admin account")
	}
	return nil
}

// newRevocationStore prefers Redis so logouts reach every instance.
func newRevocationStore(redisClient *database.RedisClient, logger logrus.FieldLogger) cache.RevocationStore {
	if redisClient == nil || redisClient.Client == nil {
		return cache.NewInMemoryRevocationStore()
	}
	return cache.NewRedisRevocationStore(redisClient.Client, logger)
}

// buildNarrator returns nil when narratives are disabled so the analysis
// reports an empty narrative instead of the failure text.
func buildNarrator(cfg config.LLMConfig, recorder *metrics.Recorder, logger logrus.FieldLogger) services.NarrativeGenerator {
	if !cfg.Enabled {
		return nil
	}

	breaker := services.NewCircuitBreaker("llm", services.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		Timeout:          cfg.OpenTimeoutDuration(),
	}, logger)
	if recorder != nil {
		recorder.SetBreakerState("llm", int(services.Closed))
		breaker.OnStateChange(func(name string, _, to services.CircuitBreakerState) {
			recorder.SetBreakerState(name, int(to))
		})
	}

	return services.NewGuardedNarrator(llm.NewClient(cfg), breaker)
}

func newNotifier(cfg config.TelegramConfig, logger logrus.FieldLogger) *services.ScheduleNotifier {
	sender, err := services.NewTelegramSender(cfg.BotToken)
	if err != nil {
		logger.WithError(err).Warn("Telegram alerts disabled")
		sender = nil
	}
	return services.NewScheduleNotifier(sender, cfg.ChatID, logger)
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
