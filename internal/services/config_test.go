package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"barterhub/internal/logger"
	"barterhub/internal/models"
	"barterhub/internal/pkg/caching"
)

func newTestServiceConfig(values map[string]string) (*ServiceConfig, *int) {
	loads := 0
	load := func(_ context.Context, key string) (*models.Config, error) {
		loads++
		v, ok := values[key]
		if !ok {
			return nil, sql.ErrNoRows
		}
		if v == "!" {
			return nil, errors.New("connection refused")
		}
		return &models.Config{Key: key, Value: v}, nil
	}
	return &ServiceConfig{caching.NewMemoryCache(), load, logger.For("test")}, &loads
}

func TestServiceConfigDefaults(t *testing.T) {
	service, _ := newTestServiceConfig(nil)
	ctx := context.Background()

	policy := service.EligibilityPolicy(ctx)
	assert.Equal(t, 3, policy.StrikeLimit)
	assert.Equal(t, 1000, policy.MinFollowers)
	assert.Equal(t, 50000, policy.MaxFollowers)
	assert.Equal(t, 7*24*time.Hour, policy.InstagramStaleAfter)
	assert.Equal(t, DEFAULT_DELIVERABLE_BUFFER_DAYS, service.BufferDays(ctx))
	assert.Equal(t, DefaultLifecyclePolicy(), service.LifecyclePolicy(ctx))
}

func TestServiceConfigOverrides(t *testing.T) {
	service, _ := newTestServiceConfig(map[string]string{
		CONFIG_STRIKE_LIMIT:                     "5",
		CONFIG_DELIVERABLE_BUFFER_DAYS:          " 7 ",
		CONFIG_LIFECYCLE_VERIFICATION_PLATFORMS: "tiktok, myspace",
		CONFIG_REMINDER_WINDOW_HOURS:            "24",
	})
	ctx := context.Background()

	assert.Equal(t, 5, service.EligibilityPolicy(ctx).StrikeLimit)
	assert.Equal(t, 7, service.BufferDays(ctx))
	lifecycle := service.LifecyclePolicy(ctx)
	assert.Equal(t, []models.Platform{models.PlatformTikTok}, lifecycle.Platforms)
	assert.Equal(t, 24*time.Hour, lifecycle.ReminderWindow)
}

func TestServiceConfigFallsBackOnBrokenValues(t *testing.T) {
	service, _ := newTestServiceConfig(map[string]string{
		CONFIG_STRIKE_LIMIT:            "three",
		CONFIG_DELIVERABLE_BUFFER_DAYS: "-2",
		CONFIG_NANO_MIN_FOLLOWERS:      "!",
	})
	ctx := context.Background()

	policy := service.EligibilityPolicy(ctx)
	assert.Equal(t, 3, policy.StrikeLimit)
	assert.Equal(t, 1000, policy.MinFollowers)
	assert.Equal(t, DEFAULT_DELIVERABLE_BUFFER_DAYS, service.BufferDays(ctx))
}

func TestServiceConfigCachesValues(t *testing.T) {
	service, loads := newTestServiceConfig(map[string]string{CONFIG_STRIKE_LIMIT: "4"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := service.GetIntConfig(ctx, CONFIG_STRIKE_LIMIT, 3)
		assert.NoError(t, err)
		assert.Equal(t, 4, v)
	}
	assert.Equal(t, 1, *loads)
}

func TestDefaultConfigsReproduceBuiltInPolicy(t *testing.T) {
	values := map[string]string{}
	for _, c := range DefaultConfigs() {
		assert.NotContains(t, values, c.Key, "duplicate key %s", c.Key)
		values[c.Key] = c.Value
	}

	seeded, _ := newTestServiceConfig(values)
	empty, _ := newTestServiceConfig(nil)
	ctx := context.Background()

	assert.Equal(t, empty.EligibilityPolicy(ctx), seeded.EligibilityPolicy(ctx))
	assert.Equal(t, empty.LifecyclePolicy(ctx), seeded.LifecyclePolicy(ctx))
	assert.Equal(t, empty.BufferDays(ctx), seeded.BufferDays(ctx))
}
