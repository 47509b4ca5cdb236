package services

import (
	"context"
	"time"

	"github.com/samber/do"

	"barterhub/internal/interfaces"
	"barterhub/internal/models"
)

// ServiceStrike is the strike ledger. A match carries at most one strike.
type ServiceStrike struct {
	store interfaces.StrikeStore
}

func NewServiceStrike(container *do.Injector) (*ServiceStrike, error) {
	store, err := do.Invoke[interfaces.StrikeStore](container)
	if err != nil {
		return nil, err
	}
	return &ServiceStrike{store}, nil
}

// Record reports false when the match already had a strike.
func (service *ServiceStrike) Record(ctx context.Context, creatorID, matchID int64, reason string) (bool, error) {
	return service.store.InsertStrike(ctx, &models.Strike{
		CreatorID: creatorID,
		MatchID:   matchID,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
}

func (service *ServiceStrike) Count(ctx context.Context, creatorID int64) (int, error) {
	return service.store.CountStrikes(ctx, creatorID)
}

func (service *ServiceStrike) List(ctx context.Context, creatorID int64) ([]models.Strike, error) {
	strikes, err := service.store.ListStrikes(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if strikes == nil {
		strikes = []models.Strike{}
	}
	return strikes, nil
}
