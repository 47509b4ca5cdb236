// Package container wires the injector shared by the api and cron binaries.
package container

import (
	"database/sql"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"barterhub/internal/config"
	"barterhub/internal/datastore"
	"barterhub/internal/interfaces"
	"barterhub/internal/pkg/caching"
	"barterhub/internal/pkg/limiter"
	"barterhub/internal/services"
)

func OpenDB(dsn, password string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithPassword(password),
	))
	return bun.NewDB(sqldb, pgdialect.New())
}

func New(cfg *config.Env) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return OpenDB(cfg.DBDSN, cfg.DBPassword), nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		return OpenDB(cfg.DBDSNReadonly, cfg.DBPasswordReadonly), nil
	})

	provideRedis(injector, "redis-db", cfg.RedisDB)
	provideRedis(injector, "redis-cache", cfg.RedisCache)
	provideRedis(injector, "redis-limiter", cfg.RedisLimiter)
	provideRedis(injector, "redis-mutex", cfg.RedisMutex)

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		redisCache, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}
		return caching.NewCacheRedis(redisCache, true)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		redisLimiter, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}
		return limiter.NewLimiter(redisLimiter)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		redisMutex, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}
		return redsync.New(goredis.NewPool(redisMutex)), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.ClaimStore, error) {
		postgresDB, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewClaimStore(postgresDB, cfg.ClaimLockTimeout, cfg.ClaimStatementTimeout), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.LifecycleStore, error) {
		postgresDB, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewLifecycleStore(postgresDB), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.StrikeStore, error) {
		postgresDB, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewStrikeStore(postgresDB), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.ShipmentStore, error) {
		postgresDB, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewShipmentStore(postgresDB), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceHTTP, error) {
		return services.NewServiceHTTP(cfg.HTTPTimeout), nil
	})

	do.Provide(injector, func(i *do.Injector) ([]interfaces.MediaLister, error) {
		client, err := do.Invoke[*services.ServiceHTTP](i)
		if err != nil {
			return nil, err
		}
		return []interfaces.MediaLister{
			services.NewInstagramMediaLister(client, cfg.InstagramGraphURL),
			services.NewTikTokMediaLister(client, cfg.TikTokAPIURL),
		}, nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Commerce, error) {
		client, err := do.Invoke[*services.ServiceHTTP](i)
		if err != nil {
			return nil, err
		}
		return services.NewServiceCommerce(client, cfg.CommerceAPIURL, cfg.CommerceAPIKey), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Bot, error) {
		return services.NewBot(cfg.BotToken)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Notifier, error) {
		bot, err := do.Invoke[*services.Bot](i)
		if err != nil {
			return nil, err
		}
		return services.NewServiceNotification(services.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, bot), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Alerter, error) {
		bot, err := do.Invoke[*services.Bot](i)
		if err != nil {
			return nil, err
		}
		return services.NewServiceAlert(bot, cfg.AlertChatID), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(cfg.JWTSecret)
	})

	do.Provide(injector, services.NewServiceConfig)
	do.Provide(injector, func(i *do.Injector) (services.PolicySource, error) {
		return do.Invoke[*services.ServiceConfig](i)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.SubscriptionChecker, error) {
		return services.NewServiceSubscription(i)
	})

	do.Provide(injector, services.NewServiceStrike)
	do.Provide(injector, services.NewServiceFulfillment)
	do.Provide(injector, services.NewServiceClaim)
	do.Provide(injector, services.NewServiceMatch)
	do.Provide(injector, services.NewServiceOffer)
	do.Provide(injector, services.NewServiceDeliverable)
	do.Provide(injector, services.NewServiceLink)
	do.Provide(injector, services.NewServiceLifecycle)

	return injector
}

func provideRedis(injector *do.Injector, name, url string) {
	do.ProvideNamed(injector, name, func(i *do.Injector) (redis.UniversalClient, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})
}
