package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"barterhub/internal/datastore"
	"barterhub/internal/eligibility"
	"barterhub/internal/logger"
	"barterhub/internal/models"
	"barterhub/internal/pkg/caching"
)

type LifecyclePolicy struct {
	ReminderWindow    time.Duration
	ReminderLimit     int
	VerificationLimit int
	OverdueLimit      int
	MediaPageSize     int
	Platforms         []models.Platform
}

func DefaultLifecyclePolicy() LifecyclePolicy {
	return LifecyclePolicy{
		ReminderWindow:    DEFAULT_REMINDER_WINDOW_HOURS * time.Hour,
		ReminderLimit:     DEFAULT_REMINDER_LIMIT,
		VerificationLimit: DEFAULT_VERIFICATION_LIMIT,
		OverdueLimit:      DEFAULT_OVERDUE_LIMIT,
		MediaPageSize:     DEFAULT_MEDIA_PAGE_SIZE,
		Platforms:         models.SupportedPlatforms,
	}
}

// PolicySource hands out the tunables in effect for one request or run.
type PolicySource interface {
	EligibilityPolicy(ctx context.Context) eligibility.Policy
	LifecyclePolicy(ctx context.Context) LifecyclePolicy
	BufferDays(ctx context.Context) int
}

// StaticPolicy serves fixed values. Used when the config table is not wanted, e.g. in tests.
type StaticPolicy struct {
	Eligibility eligibility.Policy
	Lifecycle   LifecyclePolicy
	Buffer      int
}

func (p StaticPolicy) EligibilityPolicy(context.Context) eligibility.Policy { return p.Eligibility }
func (p StaticPolicy) LifecyclePolicy(context.Context) LifecyclePolicy      { return p.Lifecycle }
func (p StaticPolicy) BufferDays(context.Context) int                       { return p.Buffer }

type ServiceConfig struct {
	cache caching.Cache
	load  func(ctx context.Context, key string) (*models.Config, error)
	log   *logrus.Entry
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, key string) (*models.Config, error) {
		return datastore.GetConfigByKey(ctx, readonlyPostgresDB, key)
	}
	return &ServiceConfig{cache, load, logger.For("config")}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.load(ctx, key)
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCache(ctx, service.cache, DBKeyConfig(key), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, err
	}
	return intValue, nil
}

// intOr never fails: a broken or unreachable config row falls back to the default.
func (service *ServiceConfig) intOr(ctx context.Context, key string, defaultValue int) int {
	v, err := service.GetIntConfig(ctx, key, defaultValue)
	if err != nil {
		service.log.WithError(err).WithField("key", key).Warn("config value unusable, using default")
		return defaultValue
	}
	return v
}

func (service *ServiceConfig) EligibilityPolicy(ctx context.Context) eligibility.Policy {
	def := eligibility.DefaultPolicy()
	return eligibility.Policy{
		StrikeLimit:               service.intOr(ctx, CONFIG_STRIKE_LIMIT, def.StrikeLimit),
		MinFollowers:              service.intOr(ctx, CONFIG_NANO_MIN_FOLLOWERS, def.MinFollowers),
		MaxFollowers:              service.intOr(ctx, CONFIG_NANO_MAX_FOLLOWERS, def.MaxFollowers),
		InstagramStaleAfter:       time.Duration(service.intOr(ctx, CONFIG_INSTAGRAM_STALE_AFTER_DAYS, 7)) * 24 * time.Hour,
		ClaimsPerCreatorPerMinute: service.intOr(ctx, CONFIG_CLAIMS_PER_CREATOR_PER_MINUTE, def.ClaimsPerCreatorPerMinute),
		ClaimsPerIPPerMinute:      service.intOr(ctx, CONFIG_CLAIMS_PER_IP_PER_MINUTE, def.ClaimsPerIPPerMinute),
	}
}

func (service *ServiceConfig) LifecyclePolicy(ctx context.Context) LifecyclePolicy {
	def := DefaultLifecyclePolicy()
	policy := LifecyclePolicy{
		ReminderWindow:    time.Duration(service.intOr(ctx, CONFIG_REMINDER_WINDOW_HOURS, DEFAULT_REMINDER_WINDOW_HOURS)) * time.Hour,
		ReminderLimit:     service.intOr(ctx, CONFIG_LIFECYCLE_REMINDER_LIMIT, def.ReminderLimit),
		VerificationLimit: service.intOr(ctx, CONFIG_LIFECYCLE_VERIFICATION_LIMIT, def.VerificationLimit),
		OverdueLimit:      service.intOr(ctx, CONFIG_LIFECYCLE_OVERDUE_LIMIT, def.OverdueLimit),
		MediaPageSize:     service.intOr(ctx, CONFIG_LIFECYCLE_MEDIA_PAGE_SIZE, def.MediaPageSize),
		Platforms:         def.Platforms,
	}

	raw, err := service.GetStringConfig(ctx, CONFIG_LIFECYCLE_VERIFICATION_PLATFORMS, "")
	if err == nil && strings.TrimSpace(raw) != "" {
		policy.Platforms = ParsePlatforms(raw)
	}
	return policy
}

func (service *ServiceConfig) BufferDays(ctx context.Context) int {
	days := service.intOr(ctx, CONFIG_DELIVERABLE_BUFFER_DAYS, DEFAULT_DELIVERABLE_BUFFER_DAYS)
	if days < 0 {
		return DEFAULT_DELIVERABLE_BUFFER_DAYS
	}
	return days
}

// ParsePlatforms reads a comma separated platform list, skipping unknown names.
func ParsePlatforms(raw string) []models.Platform {
	var platforms []models.Platform
	for _, part := range strings.Split(raw, ",") {
		p := models.Platform(strings.ToUpper(strings.TrimSpace(part)))
		for _, supported := range models.SupportedPlatforms {
			if p == supported {
				platforms = append(platforms, p)
			}
		}
	}
	return platforms
}

// DefaultConfigs lists every tunable with the value used when its row is missing.
func DefaultConfigs() []models.Config {
	def := eligibility.DefaultPolicy()
	return []models.Config{
		{Key: CONFIG_SERVER_MODE, Value: SERVER_MODE_PRODUCTION},
		{Key: CONFIG_STRIKE_LIMIT, Value: strconv.Itoa(def.StrikeLimit), Description: "strikes that block new claims"},
		{Key: CONFIG_NANO_MIN_FOLLOWERS, Value: strconv.Itoa(def.MinFollowers)},
		{Key: CONFIG_NANO_MAX_FOLLOWERS, Value: strconv.Itoa(def.MaxFollowers)},
		{Key: CONFIG_INSTAGRAM_STALE_AFTER_DAYS, Value: "7"},
		{Key: CONFIG_CLAIMS_PER_CREATOR_PER_MINUTE, Value: strconv.Itoa(def.ClaimsPerCreatorPerMinute)},
		{Key: CONFIG_CLAIMS_PER_IP_PER_MINUTE, Value: strconv.Itoa(def.ClaimsPerIPPerMinute)},
		{Key: CONFIG_DELIVERABLE_BUFFER_DAYS, Value: strconv.Itoa(DEFAULT_DELIVERABLE_BUFFER_DAYS), Description: "days added to the offer deadline"},
		{Key: CONFIG_REMINDER_WINDOW_HOURS, Value: strconv.Itoa(DEFAULT_REMINDER_WINDOW_HOURS)},
		{Key: CONFIG_CRONJOB_TIME_LIFECYCLE, Value: DEFAULT_CRONJOB_TIME_LIFECYCLE},
		{Key: CONFIG_LIFECYCLE_REMINDER_LIMIT, Value: strconv.Itoa(DEFAULT_REMINDER_LIMIT)},
		{Key: CONFIG_LIFECYCLE_VERIFICATION_LIMIT, Value: strconv.Itoa(DEFAULT_VERIFICATION_LIMIT)},
		{Key: CONFIG_LIFECYCLE_OVERDUE_LIMIT, Value: strconv.Itoa(DEFAULT_OVERDUE_LIMIT)},
		{Key: CONFIG_LIFECYCLE_MEDIA_PAGE_SIZE, Value: strconv.Itoa(DEFAULT_MEDIA_PAGE_SIZE)},
		{Key: CONFIG_LIFECYCLE_VERIFICATION_PLATFORMS, Value: "INSTAGRAM,TIKTOK"},
	}
}
