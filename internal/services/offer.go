package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"barterhub/internal/datastore"
	"barterhub/internal/eligibility"
	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
)

type offerStatusFunc func(ctx context.Context, offerID, brandID int64, from []models.OfferStatus, to models.OfferStatus, at time.Time) (bool, error)

type ServiceOffer struct {
	subscriptions interfaces.SubscriptionChecker
	getOffer      func(ctx context.Context, offerID int64) (*models.Offer, error)
	setStatus     offerStatusFunc
	now           func() time.Time
	log           *logrus.Entry
}

func NewServiceOffer(container *do.Injector) (*ServiceOffer, error) {
	subscriptions, err := do.Invoke[interfaces.SubscriptionChecker](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	getOffer := func(ctx context.Context, offerID int64) (*models.Offer, error) {
		return datastore.GetOffer(ctx, postgresDB, offerID)
	}
	setStatus := func(ctx context.Context, offerID, brandID int64, from []models.OfferStatus, to models.OfferStatus, at time.Time) (bool, error) {
		return datastore.SetOfferStatus(ctx, postgresDB, offerID, brandID, from, to, at)
	}
	return &ServiceOffer{subscriptions, getOffer, setStatus, time.Now, logger.For("offer")}, nil
}

// Publish opens a draft offer for claims. The brand needs an active subscription.
func (service *ServiceOffer) Publish(ctx context.Context, brandID, offerID int64) (*models.Offer, error) {
	active, err := service.subscriptions.IsActive(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, rejectionError(&eligibility.Rejection{
			Code:    eligibility.CodePaywall,
			Message: "an active subscription is required to publish offers",
		})
	}
	return service.transition(ctx, brandID, offerID, []models.OfferStatus{models.OfferStatusDraft}, models.OfferStatusPublished)
}

// Archive closes the offer. Existing matches and deliverables are left as they are.
func (service *ServiceOffer) Archive(ctx context.Context, brandID, offerID int64) (*models.Offer, error) {
	return service.transition(ctx, brandID, offerID, []models.OfferStatus{models.OfferStatusDraft, models.OfferStatusPublished}, models.OfferStatusArchived)
}

func (service *ServiceOffer) transition(ctx context.Context, brandID, offerID int64, from []models.OfferStatus, to models.OfferStatus) (*models.Offer, error) {
	ok, err := service.setStatus(ctx, offerID, brandID, from, to, service.now())
	if err != nil {
		return nil, err
	}

	offer, err := service.getOffer(ctx, offerID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && offer.BrandID != brandID) {
		return nil, errorx.Wrap(ErrOfferNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.Wrap(errors.New("offer cannot move from "+string(offer.Status)+" to "+string(to)), errorx.Invalid)
	}

	service.log.WithFields(logrus.Fields{"offer_id": offerID, "brand_id": brandID, "status": to}).Info("offer status changed")
	return offer, nil
}
