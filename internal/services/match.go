package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"

	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
)

type ApprovalResult struct {
	MatchID       int64              `json:"match_id"`
	Status        models.MatchStatus `json:"status"`
	DeliverableID int64              `json:"deliverable_id"`
	DueAt         time.Time          `json:"due_at"`
	Fulfillment   FulfillmentResult  `json:"fulfillment"`
}

// ServiceMatch moves matches out of PENDING_APPROVAL: brand approval or decline, creator cancel.
type ServiceMatch struct {
	store       interfaces.ClaimStore
	policy      PolicySource
	fulfillment *ServiceFulfillment
	now         func() time.Time
	log         *logrus.Entry
}

func NewServiceMatch(container *do.Injector) (*ServiceMatch, error) {
	store, err := do.Invoke[interfaces.ClaimStore](container)
	if err != nil {
		return nil, err
	}

	policy, err := do.Invoke[PolicySource](container)
	if err != nil {
		return nil, err
	}

	fulfillment, err := do.Invoke[*ServiceFulfillment](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMatch{store, policy, fulfillment, time.Now, logger.For("match")}, nil
}

func (service *ServiceMatch) Approve(ctx context.Context, brandID, matchID int64) (*ApprovalResult, error) {
	bufferDays := service.policy.BufferDays(ctx)
	var match *models.Match
	var deliverable *models.Deliverable

	err := service.store.RunClaimTx(ctx, func(ctx context.Context, tx interfaces.ClaimTx) error {
		var offer *models.Offer
		var err error
		match, offer, err = lockOwnedMatch(ctx, tx, brandID, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusPendingApproval {
			return errorx.Wrap(errors.New("match is not waiting for approval"), errorx.Invalid)
		}

		now := service.now()
		ok, err := tx.UpdateMatchStatus(ctx, match.ID, models.MatchStatusPendingApproval, models.MatchStatusAccepted, &now)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.Wrap(errors.New("match is not waiting for approval"), errorx.Invalid)
		}
		match.Status = models.MatchStatusAccepted
		match.AcceptedAt = &now

		deliverable = newDeliverable(match, offer, now, bufferDays)
		return tx.InsertDeliverable(ctx, deliverable)
	})
	if err != nil {
		return nil, claimTxError(err)
	}

	result := &ApprovalResult{
		MatchID:       match.ID,
		Status:        match.Status,
		DeliverableID: deliverable.ID,
		DueAt:         deliverable.DueAt,
	}

	// the match is committed; fulfillment problems only show up in the flags
	offer, err := service.store.GetOffer(ctx, match.OfferID)
	if err != nil {
		service.log.WithError(err).WithField("match_id", match.ID).Error("approved match without fulfillment: offer not loaded")
		return result, nil
	}
	creator, err := service.store.GetCreator(ctx, match.CreatorID)
	if err != nil {
		service.log.WithError(err).WithField("match_id", match.ID).Error("approved match without fulfillment: creator not loaded")
		return result, nil
	}
	result.Fulfillment = service.fulfillment.Fulfill(ctx, FulfillmentRequest{Match: match, Offer: offer, Creator: creator})
	return result, nil
}

// Decline revokes a pending match and blocks the creator from claiming the offer again.
func (service *ServiceMatch) Decline(ctx context.Context, brandID, matchID int64, reason string) (*models.Match, error) {
	var match *models.Match
	err := service.store.RunClaimTx(ctx, func(ctx context.Context, tx interfaces.ClaimTx) error {
		var err error
		match, _, err = lockOwnedMatch(ctx, tx, brandID, matchID)
		if err != nil {
			return err
		}

		ok, err := tx.UpdateMatchStatus(ctx, match.ID, models.MatchStatusPendingApproval, models.MatchStatusRevoked, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.Wrap(errors.New("match is not waiting for approval"), errorx.Invalid)
		}
		match.Status = models.MatchStatusRevoked

		return tx.InsertRejection(ctx, &models.OfferRejection{
			OfferID:   match.OfferID,
			CreatorID: match.CreatorID,
			Reason:    reason,
			CreatedAt: service.now(),
		})
	})
	if err != nil {
		return nil, claimTxError(err)
	}
	return match, nil
}

// Cancel lets the creator withdraw a claim the brand has not answered yet.
func (service *ServiceMatch) Cancel(ctx context.Context, creatorID, matchID int64) (*models.Match, error) {
	var match *models.Match
	err := service.store.RunClaimTx(ctx, func(ctx context.Context, tx interfaces.ClaimTx) error {
		var err error
		match, err = tx.GetMatchForUpdate(ctx, matchID)
		if errors.Is(err, sql.ErrNoRows) {
			return errorx.Wrap(ErrMatchNotFound, errorx.NotExist)
		}
		if err != nil {
			return err
		}
		if match.CreatorID != creatorID {
			return errorx.Wrap(ErrMatchNotFound, errorx.NotExist)
		}

		ok, err := tx.UpdateMatchStatus(ctx, match.ID, models.MatchStatusPendingApproval, models.MatchStatusCanceled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.Wrap(errors.New("only pending claims can be canceled"), errorx.Invalid)
		}
		match.Status = models.MatchStatusCanceled
		return nil
	})
	if err != nil {
		return nil, claimTxError(err)
	}
	return match, nil
}

// lockOwnedMatch locks the match and then its offer. Matches of other brands look missing.
func lockOwnedMatch(ctx context.Context, tx interfaces.ClaimTx, brandID, matchID int64) (*models.Match, *models.Offer, error) {
	match, err := tx.GetMatchForUpdate(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(ErrMatchNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, nil, err
	}

	offer, err := tx.LockOffer(ctx, match.OfferID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(ErrMatchNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, nil, err
	}
	if offer.BrandID != brandID {
		return nil, nil, errorx.Wrap(ErrMatchNotFound, errorx.NotExist)
	}
	return match, offer, nil
}
