package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"

	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
)

var ErrDeliverableClosed = errors.New("deliverable is no longer due")

// ServiceDeliverable handles the creator and brand sides of a DUE deliverable outside the reconciler.
type ServiceDeliverable struct {
	store interfaces.LifecycleStore
	now   func() time.Time
	log   *logrus.Entry
}

func NewServiceDeliverable(container *do.Injector) (*ServiceDeliverable, error) {
	store, err := do.Invoke[interfaces.LifecycleStore](container)
	if err != nil {
		return nil, err
	}
	return &ServiceDeliverable{store, time.Now, logger.For("deliverable")}, nil
}

// Submit records where the creator posted. The deliverable stays DUE until it is verified.
func (service *ServiceDeliverable) Submit(ctx context.Context, creatorID, deliverableID int64, submissionURL, note string) error {
	owner, err := service.owner(ctx, deliverableID)
	if err != nil {
		return err
	}
	if owner.CreatorID != creatorID {
		return errorx.Wrap(ErrDeliverableNotFound, errorx.NotExist)
	}

	if submissionURL != "" {
		u, err := url.Parse(submissionURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errorx.Wrap(errors.New("submission url must be an absolute http(s) url"), errorx.Validation)
		}
	}

	ok, err := service.store.RecordSubmission(ctx, deliverableID, submissionURL, note, service.now())
	if err != nil {
		return err
	}
	if !ok {
		return errorx.Wrap(ErrDeliverableClosed, errorx.Invalid)
	}
	return nil
}

// Verify is the brand's manual verification, the only path for UGC_ONLY deliverables.
func (service *ServiceDeliverable) Verify(ctx context.Context, brandID, deliverableID int64, permalink string) error {
	owner, err := service.owner(ctx, deliverableID)
	if err != nil {
		return err
	}
	if owner.BrandID != brandID {
		return errorx.Wrap(ErrDeliverableNotFound, errorx.NotExist)
	}

	if permalink == "" {
		permalink = owner.SubmissionURL
	}
	ok, err := service.store.MarkVerified(ctx, deliverableID, models.Media{Permalink: permalink}, models.VerificationSourceManual, service.now())
	if err != nil {
		return err
	}
	if !ok {
		return errorx.Wrap(ErrDeliverableClosed, errorx.Invalid)
	}

	service.log.WithFields(logrus.Fields{"deliverable_id": deliverableID, "brand_id": brandID}).Info("deliverable verified manually")
	return nil
}

func (service *ServiceDeliverable) owner(ctx context.Context, deliverableID int64) (*models.DeliverableOwner, error) {
	owner, err := service.store.GetDeliverableOwner(ctx, deliverableID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(ErrDeliverableNotFound, errorx.NotExist)
	}
	return owner, err
}
