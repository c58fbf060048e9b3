package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjm-manufacturing/core1-backend/internal/cache"
	"github.com/jjm-manufacturing/core1-backend/internal/config"
	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/metrics"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
)

type fakeSeeder struct {
	seeded  *models.Account
	created bool
	err     error
}

func (f *fakeSeeder) EnsureAdmin(_ context.Context, account *models.Account) (bool, error) {
	f.seeded = account
	return f.created, f.err
}

func TestSeedAdmin(t *testing.T) {
	logger, hook := test.NewNullLogger()
	seeder := &fakeSeeder{created: true}
	sec := config.SecurityConfig{AdminEmail: " Admin@JJM.test ", AdminPassword: "bootstrap-pass", AdminName: "Administrator", BcryptCost: bcrypt.MinCost}

	require.NoError(t, seedAdmin(context.Background(), seeder, sec, logger))

	require.NotNil(t, seeder.seeded)
	assert.Equal(t, "admin@jjm.test", seeder.seeded.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(seeder.seeded.PasswordHash), []byte("bootstrap-pass")))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Seeded admin account", hook.LastEntry().Message)
}

func TestSeedAdmin_SkippedWithoutCredentials(t *testing.T) {
	logger, _ := test.NewNullLogger()
	seeder := &fakeSeeder{}

	require.NoError(t, seedAdmin(context.Background(), seeder, config.SecurityConfig{AdminEmail: "admin@jjm.test"}, logger))
	assert.Nil(t, seeder.seeded)
}

func TestSeedAdmin_Error(t *testing.T) {
	logger, _ := test.NewNullLogger()
	seeder := &fakeSeeder{err: errors.New("db down")}
	sec := config.SecurityConfig{AdminEmail: "admin@jjm.test", AdminPassword: "pw", BcryptCost: bcrypt.MinCost}

	err := seedAdmin(context.Background(), seeder, sec, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed admin")
}

func TestNewRevocationStore(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, inMemory := newRevocationStore(nil, logger).(*cache.InMemoryRevocationStore)
	assert.True(t, inMemory)

	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer func() { _ = client.Client.Close() }()

	store := newRevocationStore(client, logger)
	_, isRedis := store.(*cache.RedisRevocationStore)
	assert.True(t, isRedis)

	require.NoError(t, store.Revoke(context.Background(), "jti-1", time.Now().Add(time.Minute)))
	assert.True(t, mr.Exists("revoked:jti-1"))
}

func TestBuildNarrator(t *testing.T) {
	logger, _ := test.NewNullLogger()

	assert.Nil(t, buildNarrator(config.LLMConfig{Enabled: false}, nil, logger))

	narrator := buildNarrator(config.LLMConfig{Enabled: true, BaseURL: "http://127.0.0.1:1", FailureThreshold: 2}, metrics.New(), logger)
	_, guarded := narrator.(*services.GuardedNarrator)
	assert.True(t, guarded)
}

func TestNewNotifier_DisabledWithoutToken(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.False(t, newNotifier(config.TelegramConfig{}, logger).Enabled())
}

func TestDurationOr(t *testing.T) {
	assert.Equal(t, 15*time.Second, durationOr("15s", time.Minute))
	assert.Equal(t, time.Minute, durationOr("", time.Minute))
	assert.Equal(t, time.Minute, durationOr("soon", time.Minute))
	assert.Equal(t, time.Minute, durationOr("-1s", time.Minute))
}
