package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"barterhub/internal/interfaces"
	"barterhub/internal/models"
)

const (
	DefaultClaimLockTimeout      = 3 * time.Second
	DefaultClaimStatementTimeout = 5 * time.Second
)

type ClaimStore struct {
	db               *bun.DB
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

func NewClaimStore(db *bun.DB, lockTimeout, statementTimeout time.Duration) *ClaimStore {
	if lockTimeout <= 0 {
		lockTimeout = DefaultClaimLockTimeout
	}
	if statementTimeout <= 0 {
		statementTimeout = DefaultClaimStatementTimeout
	}
	return &ClaimStore{db, lockTimeout, statementTimeout}
}

func (s *ClaimStore) GetOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	return GetOffer(ctx, s.db, offerID)
}

func (s *ClaimStore) GetCreator(ctx context.Context, creatorID int64) (*models.Creator, error) {
	return GetCreator(ctx, s.db, creatorID)
}

func (s *ClaimStore) ListSocialAccounts(ctx context.Context, creatorID int64) ([]models.SocialAccount, error) {
	return ListSocialAccounts(ctx, s.db, creatorID)
}

func (s *ClaimStore) IsRejected(ctx context.Context, offerID, creatorID int64) (bool, error) {
	return IsOfferRejected(ctx, s.db, offerID, creatorID)
}

// RunClaimTx bounds how long the transaction waits for the offer lock and for any statement.
// Exceeding either aborts with an error IsBusy recognizes.
func (s *ClaimStore) RunClaimTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.ClaimTx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", s.statementTimeout.Milliseconds())); err != nil {
			return err
		}
		return fn(ctx, &claimTx{tx})
	})
}

type claimTx struct {
	tx bun.Tx
}

func (c *claimTx) LockOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	return LockOffer(ctx, c.tx, offerID)
}

func (c *claimTx) HasActiveMatch(ctx context.Context, offerID, creatorID int64) (bool, error) {
	return HasActiveMatch(ctx, c.tx, offerID, creatorID)
}

func (c *claimTx) CountActiveMatches(ctx context.Context, offerID int64) (int, error) {
	return CountActiveMatches(ctx, c.tx, offerID)
}

func (c *claimTx) ReserveCampaignCode(ctx context.Context, code string) (bool, error) {
	return ReserveCampaignCode(ctx, c.tx, code)
}

func (c *claimTx) InsertMatch(ctx context.Context, match *models.Match) error {
	return InsertMatch(ctx, c.tx, match)
}

func (c *claimTx) InsertDeliverable(ctx context.Context, deliverable *models.Deliverable) error {
	return InsertDeliverable(ctx, c.tx, deliverable)
}

func (c *claimTx) GetMatchForUpdate(ctx context.Context, matchID int64) (*models.Match, error) {
	return GetMatchForUpdate(ctx, c.tx, matchID)
}

func (c *claimTx) UpdateMatchStatus(ctx context.Context, matchID int64, from, to models.MatchStatus, acceptedAt *time.Time) (bool, error) {
	return UpdateMatchStatus(ctx, c.tx, matchID, from, to, acceptedAt)
}

func (c *claimTx) InsertRejection(ctx context.Context, rejection *models.OfferRejection) error {
	return InsertOfferRejection(ctx, c.tx, rejection)
}
