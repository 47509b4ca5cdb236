package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/do"
	"github.com/uptrace/bun"

	"barterhub/internal/datastore"
	"barterhub/internal/models"
	"barterhub/internal/pkg/caching"
)

// ServiceSubscription answers whether a brand's subscription currently allows publishing and claims.
type ServiceSubscription struct {
	cache caching.Cache
	load  func(ctx context.Context, brandID int64) (models.SubscriptionStatus, error)
}

func NewServiceSubscription(container *do.Injector) (*ServiceSubscription, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, brandID int64) (models.SubscriptionStatus, error) {
		brand, err := datastore.GetBrand(ctx, readonlyPostgresDB, brandID)
		if err != nil {
			return "", err
		}
		return brand.SubscriptionStatus, nil
	}
	return &ServiceSubscription{cache, load}, nil
}

func (service *ServiceSubscription) IsActive(ctx context.Context, brandID int64) (bool, error) {
	callback := func() (models.SubscriptionStatus, error) {
		status, err := service.load(ctx, brandID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.SubscriptionStatusCanceled, nil
		}
		return status, err
	}

	status, err := caching.UseCache(ctx, service.cache, DBKeyBrandSubscription(brandID), CACHE_TTL_15_SECONDS, callback)
	if err != nil {
		return false, err
	}
	return status.IsActive(), nil
}

// Invalidate drops the cached status after a billing change.
func (service *ServiceSubscription) Invalidate(ctx context.Context, brandID int64) error {
	return service.cache.Delete(ctx, DBKeyBrandSubscription(brandID))
}
