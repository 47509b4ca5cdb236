package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"barterhub/internal/datastore"
	"barterhub/internal/eligibility"
	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
	"barterhub/internal/pkg/campaigncode"
	"barterhub/internal/pkg/limiter"
	"barterhub/internal/telemetry"
)

type ClaimRequest struct {
	OfferID   int64
	CreatorID int64
	ClientIP  string
}

type ClaimResult struct {
	MatchID       int64              `json:"match_id"`
	Status        models.MatchStatus `json:"status"`
	CampaignCode  string             `json:"campaign_code"`
	SharePath     string             `json:"share_path"`
	DeliverableID *int64             `json:"deliverable_id,omitempty"`
	DueAt         *time.Time         `json:"due_at,omitempty"`
	Fulfillment   *FulfillmentResult `json:"fulfillment,omitempty"`
}

type ServiceClaim struct {
	store         interfaces.ClaimStore
	strikes       *ServiceStrike
	subscriptions interfaces.SubscriptionChecker
	limiter       interfaces.Limiter
	policy        PolicySource
	fulfillment   *ServiceFulfillment
	notifier      interfaces.Notifier
	codes         *campaigncode.Generator
	now           func() time.Time
	log           *logrus.Entry
}

func NewServiceClaim(container *do.Injector) (*ServiceClaim, error) {
	store, err := do.Invoke[interfaces.ClaimStore](container)
	if err != nil {
		return nil, err
	}

	strikes, err := do.Invoke[*ServiceStrike](container)
	if err != nil {
		return nil, err
	}

	subscriptions, err := do.Invoke[interfaces.SubscriptionChecker](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
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

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	return &ServiceClaim{
		store:         store,
		strikes:       strikes,
		subscriptions: subscriptions,
		limiter:       rateLimiter,
		policy:        policy,
		fulfillment:   fulfillment,
		notifier:      notifier,
		codes:         campaigncode.NewGenerator(),
		now:           time.Now,
		log:           logger.For("claim"),
	}, nil
}

// Claim evaluates eligibility and, when it passes, creates the match under the offer lock.
// Auto-accepted matches get their deliverable in the same transaction and are fulfilled after commit.
func (service *ServiceClaim) Claim(ctx context.Context, req ClaimRequest) (result *ClaimResult, err error) {
	ctx, span := telemetry.Start(ctx, "claim",
		attribute.Int64("offer.id", req.OfferID),
		attribute.Int64("creator.id", req.CreatorID),
	)
	defer func() { telemetry.End(span, err) }()

	policy := service.policy.EligibilityPolicy(ctx)
	in, err := service.loadInput(ctx, req, policy)
	if err != nil {
		return nil, err
	}

	decision := eligibility.Evaluate(*in)
	if !decision.Eligible() {
		return nil, rejectionError(decision.Rejection)
	}

	match, deliverable, err := service.commit(ctx, req, decision.AutoAccept)
	if err != nil {
		return nil, err
	}

	result = &ClaimResult{
		MatchID:      match.ID,
		Status:       match.Status,
		CampaignCode: match.CampaignCode,
		SharePath:    SharePath(match.CampaignCode),
	}
	if deliverable != nil {
		result.DeliverableID = &deliverable.ID
		result.DueAt = &deliverable.DueAt
	}

	if match.Status == models.MatchStatusAccepted {
		fulfillment := service.fulfillment.Fulfill(ctx, FulfillmentRequest{Match: match, Offer: in.Offer, Creator: in.Creator})
		result.Fulfillment = &fulfillment
	} else {
		service.notifyPending(ctx, in.Offer, in.Creator)
	}

	service.log.WithFields(logrus.Fields{
		"offer_id":   req.OfferID,
		"creator_id": req.CreatorID,
		"match_id":   match.ID,
		"status":     match.Status,
	}).Info("offer claimed")
	return result, nil
}

func (service *ServiceClaim) loadInput(ctx context.Context, req ClaimRequest, policy eligibility.Policy) (*eligibility.Input, error) {
	in := &eligibility.Input{Policy: policy, Now: service.now()}

	offer, err := service.store.GetOffer(ctx, req.OfferID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if offer == nil {
		// Evaluate reports OFFER_UNAVAILABLE before looking at anything else
		return in, nil
	}
	in.Offer = offer
	in.Brand = offer.Brand

	creator, err := service.store.GetCreator(ctx, req.CreatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ClaimError{Code: CodeCreatorNotFound, Status: http.StatusNotFound, Message: "complete your creator profile first"}
	}
	if err != nil {
		return nil, err
	}
	in.Creator = creator

	in.SubscriptionActive, err = service.subscriptions.IsActive(ctx, offer.BrandID)
	if err != nil {
		return nil, fmt.Errorf("subscription status: %w", err)
	}

	in.Rejected, err = service.store.IsRejected(ctx, offer.ID, creator.ID)
	if err != nil {
		return nil, err
	}

	in.StrikeCount, err = service.strikes.Count(ctx, creator.ID)
	if err != nil {
		return nil, err
	}

	in.Accounts, err = service.store.ListSocialAccounts(ctx, creator.ID)
	if err != nil {
		return nil, err
	}

	in.RateLimit = func() eligibility.RateVerdict {
		verdict := service.allow(ctx, LimitKeyClaimCreator(req.CreatorID), policy.ClaimsPerCreatorPerMinute)
		if verdict == eligibility.RateLimited || req.ClientIP == "" {
			return verdict
		}
		if ipVerdict := service.allow(ctx, LimitKeyClaimIP(req.ClientIP), policy.ClaimsPerIPPerMinute); ipVerdict != eligibility.RateAllowed {
			return ipVerdict
		}
		return verdict
	}
	return in, nil
}

// allow fails open: a limiter outage lets the claim through.
func (service *ServiceClaim) allow(ctx context.Context, key string, perMinute int) eligibility.RateVerdict {
	if perMinute <= 0 {
		return eligibility.RateAllowed
	}
	err := service.limiter.Allow(ctx, key, redis_rate.PerMinute(perMinute))
	switch {
	case err == nil:
		return eligibility.RateAllowed
	case errors.Is(err, limiter.ErrRateLimited):
		return eligibility.RateLimited
	default:
		service.log.WithError(err).WithField("key", key).Warn("rate limiter unavailable, allowing claim")
		return eligibility.RateUnavailable
	}
}

func (service *ServiceClaim) commit(ctx context.Context, req ClaimRequest, autoAccept bool) (*models.Match, *models.Deliverable, error) {
	bufferDays := service.policy.BufferDays(ctx)
	var match *models.Match
	var deliverable *models.Deliverable

	err := service.store.RunClaimTx(ctx, func(ctx context.Context, tx interfaces.ClaimTx) error {
		offer, err := tx.LockOffer(ctx, req.OfferID)
		if errors.Is(err, sql.ErrNoRows) {
			return rejectionError(&eligibility.Rejection{Code: eligibility.CodeOfferUnavailable, Message: "this offer is not open for claims"})
		}
		if err != nil {
			return err
		}
		if offer.Status != models.OfferStatusPublished {
			return rejectionError(&eligibility.Rejection{Code: eligibility.CodeOfferUnavailable, Message: "this offer is not open for claims"})
		}

		// the eligibility pass ran without the lock
		active, err := tx.HasActiveMatch(ctx, offer.ID, req.CreatorID)
		if err != nil {
			return err
		}
		if active {
			return errAlreadyClaimed()
		}

		count, err := tx.CountActiveMatches(ctx, offer.ID)
		if err != nil {
			return err
		}
		if count >= offer.MaxClaims {
			return errMaxClaims(offer.MaxClaims)
		}

		code, err := service.codes.Generate(ctx, tx.ReserveCampaignCode)
		if errors.Is(err, campaigncode.ErrConflictExhausted) {
			return errCodeConflict()
		}
		if err != nil {
			return err
		}

		now := service.now()
		match = &models.Match{
			OfferID:      offer.ID,
			CreatorID:    req.CreatorID,
			Status:       models.MatchStatusPendingApproval,
			CampaignCode: code,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if autoAccept {
			match.Status = models.MatchStatusAccepted
			match.AcceptedAt = &now
		}
		if err := tx.InsertMatch(ctx, match); err != nil {
			return err
		}

		if autoAccept {
			deliverable = newDeliverable(match, offer, now, bufferDays)
			if err := tx.InsertDeliverable(ctx, deliverable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, claimTxError(err)
	}
	return match, deliverable, nil
}

// claimTxError keeps typed claim errors and translates database aborts.
func claimTxError(err error) error {
	var claimErr *ClaimError
	switch {
	case errors.As(err, &claimErr):
		return claimErr
	case datastore.IsUniqueViolation(err):
		return errAlreadyClaimed()
	case datastore.IsBusy(err):
		return errClaimBusy()
	}
	return err
}

func newDeliverable(match *models.Match, offer *models.Offer, acceptedAt time.Time, bufferDays int) *models.Deliverable {
	return &models.Deliverable{
		MatchID:      match.ID,
		Status:       models.DeliverableStatusDue,
		ExpectedType: offer.DeliverableType,
		DueAt:        models.DueAt(acceptedAt, offer.DeadlineDaysAfterDelivery, bufferDays),
		CreatedAt:    acceptedAt,
	}
}

func (service *ServiceClaim) notifyPending(ctx context.Context, offer *models.Offer, creator *models.Creator) {
	if offer.Brand == nil {
		return
	}
	service.notifier.Notify(ctx, models.Notification{
		ID:      uuid.NewString(),
		Kind:    models.NotificationMatchPending,
		To:      offer.Brand.Contact(),
		Subject: fmt.Sprintf("New request for %s", offer.Title),
		Body:    fmt.Sprintf("%s asked to join %q. Review the request in your dashboard.", creator.DisplayName, offer.Title),
	})
}
