package interfaces

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"

	"barterhub/internal/models"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// ClaimStore serves the reads a claim needs before taking the offer lock and runs
// the locked part in one all-or-nothing transaction.
type ClaimStore interface {
	GetOffer(ctx context.Context, offerID int64) (*models.Offer, error)
	GetCreator(ctx context.Context, creatorID int64) (*models.Creator, error)
	ListSocialAccounts(ctx context.Context, creatorID int64) ([]models.SocialAccount, error)
	IsRejected(ctx context.Context, offerID, creatorID int64) (bool, error)
	RunClaimTx(ctx context.Context, fn func(ctx context.Context, tx ClaimTx) error) error
}

// ClaimTx is the set of writes a claim, approval, decline or cancel performs inside the transaction.
type ClaimTx interface {
	LockOffer(ctx context.Context, offerID int64) (*models.Offer, error)
	HasActiveMatch(ctx context.Context, offerID, creatorID int64) (bool, error)
	CountActiveMatches(ctx context.Context, offerID int64) (int, error)
	ReserveCampaignCode(ctx context.Context, code string) (bool, error)
	InsertMatch(ctx context.Context, match *models.Match) error
	InsertDeliverable(ctx context.Context, deliverable *models.Deliverable) error
	GetMatchForUpdate(ctx context.Context, matchID int64) (*models.Match, error)
	UpdateMatchStatus(ctx context.Context, matchID int64, from, to models.MatchStatus, acceptedAt *time.Time) (bool, error)
	InsertRejection(ctx context.Context, rejection *models.OfferRejection) error
}

// LifecycleStore backs the reconciler and the deliverable endpoints. Every mutating
// call is conditional on the deliverable still being DUE and reports whether it applied.
type LifecycleStore interface {
	ListReminderCandidates(ctx context.Context, from, to time.Time, limit int) ([]models.ReminderCandidate, error)
	MarkReminderSent(ctx context.Context, deliverableID int64, at time.Time) (bool, error)
	ListVerificationCandidates(ctx context.Context, platform models.Platform, now time.Time, limit int) ([]models.VerificationCandidate, error)
	MarkChecked(ctx context.Context, deliverableID int64, at time.Time) error
	MarkVerified(ctx context.Context, deliverableID int64, media models.Media, source models.VerificationSource, at time.Time) (bool, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]models.OverdueCandidate, error)
	// FailWithStrike fails the deliverable and records at most one strike for its match
	// in one transaction.
	FailWithStrike(ctx context.Context, candidate models.OverdueCandidate, reason string, at time.Time) (failed bool, struck bool, err error)
	GetDeliverableOwner(ctx context.Context, deliverableID int64) (*models.DeliverableOwner, error)
	RecordSubmission(ctx context.Context, deliverableID int64, url, note string, at time.Time) (bool, error)
}

type StrikeStore interface {
	InsertStrike(ctx context.Context, strike *models.Strike) (bool, error)
	CountStrikes(ctx context.Context, creatorID int64) (int, error)
	ListStrikes(ctx context.Context, creatorID int64) ([]models.Strike, error)
}

type ShipmentStore interface {
	InsertManualShipment(ctx context.Context, shipment *models.ManualShipment) (bool, error)
}

type MediaLister interface {
	Platform() models.Platform
	ListRecentMedia(ctx context.Context, account models.SocialAccount, limit int) ([]models.Media, error)
}

type DiscountRequest struct {
	Code       string
	Percent    int
	ProductIDs []string
	BrandID    int64
}

type OrderRequest struct {
	MatchID    int64
	BrandID    int64
	ProductIDs []string
	Recipient  models.Creator
	Reference  string
}

type Commerce interface {
	CreateDiscountCode(ctx context.Context, req DiscountRequest) (string, error)
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) models.DeliveryReport
}

type SubscriptionChecker interface {
	IsActive(ctx context.Context, brandID int64) (bool, error)
}

// Alerter forwards operator-facing failures, e.g. a reconciler run that could not complete.
type Alerter interface {
	Alert(ctx context.Context, subject string, err error)
}
