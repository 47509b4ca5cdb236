package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"barterhub/internal/interfaces"
	"barterhub/internal/models"
)

// openTestDB creates a throwaway schema on TEST_DB_DSN and migrates it.
func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	schema := "test_" + uuid.NewString()[:8]

	admin := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	_, err := admin.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithConnParams(map[string]interface{}{"search_path": schema}),
	)), pgdialect.New())

	t.Cleanup(func() {
		db.Close()
		//nolint:errcheck
		admin.ExecContext(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		admin.Close()
	})

	require.NoError(t, CreateTables(ctx, db))
	return db
}

func seedOffer(t *testing.T, db *bun.DB, maxClaims int) (*models.Offer, []*models.Creator) {
	t.Helper()
	ctx := context.Background()

	brand := &models.Brand{Name: "Cafe", SubscriptionStatus: models.SubscriptionStatusActive}
	require.NoError(t, InsertBrand(ctx, db, brand))

	offer := &models.Offer{
		BrandID:                   brand.ID,
		Title:                     "Latte for a reel",
		Status:                    models.OfferStatusPublished,
		MaxClaims:                 maxClaims,
		DeadlineDaysAfterDelivery: 7,
		DeliverableType:           models.DeliverableTypeReels,
	}
	require.NoError(t, InsertOffer(ctx, db, offer))

	creators := make([]*models.Creator, 0, maxClaims+5)
	for i := 0; i < maxClaims+5; i++ {
		creator := &models.Creator{DisplayName: fmt.Sprintf("creator-%d", i)}
		require.NoError(t, InsertCreator(ctx, db, creator))
		creators = append(creators, creator)
	}
	return offer, creators
}

// claimOnce mirrors the locked section of a claim.
func claimOnce(ctx context.Context, store *ClaimStore, offerID, creatorID int64, code string) (bool, error) {
	inserted := false
	err := store.RunClaimTx(ctx, func(ctx context.Context, tx interfaces.ClaimTx) error {
		offer, err := tx.LockOffer(ctx, offerID)
		if err != nil {
			return err
		}
		count, err := tx.CountActiveMatches(ctx, offerID)
		if err != nil {
			return err
		}
		if count >= offer.MaxClaims {
			return nil
		}
		ok, err := tx.ReserveCampaignCode(ctx, code)
		if err != nil || !ok {
			return err
		}
		inserted = true
		return tx.InsertMatch(ctx, &models.Match{
			OfferID:      offerID,
			CreatorID:    creatorID,
			Status:       models.MatchStatusPendingApproval,
			CampaignCode: code,
		})
	})
	return inserted && err == nil, err
}

func TestClaimStoreNeverOversells(t *testing.T) {
	db := openTestDB(t)
	offer, creators := seedOffer(t, db, 3)
	store := NewClaimStore(db, 0, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for i, creator := range creators {
		wg.Add(1)
		go func(i int, creatorID int64) {
			defer wg.Done()
			ok, err := claimOnce(ctx, store, offer.ID, creatorID, fmt.Sprintf("CODE%04d", i))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}(i, creator.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, claimed)
	count, err := CountActiveMatches(ctx, db, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestActivePairIsUnique(t *testing.T) {
	db := openTestDB(t)
	offer, creators := seedOffer(t, db, 5)
	ctx := context.Background()

	first := &models.Match{OfferID: offer.ID, CreatorID: creators[0].ID, Status: models.MatchStatusAccepted, CampaignCode: "AAAA2222"}
	require.NoError(t, InsertMatch(ctx, db, first))

	err := InsertMatch(ctx, db, &models.Match{OfferID: offer.ID, CreatorID: creators[0].ID, Status: models.MatchStatusPendingApproval, CampaignCode: "BBBB3333"})
	assert.True(t, IsUniqueViolation(err))

	ok, err := UpdateMatchStatus(ctx, db, first.ID, models.MatchStatusAccepted, models.MatchStatusCanceled, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// a terminal match frees the pair
	require.NoError(t, InsertMatch(ctx, db, &models.Match{OfferID: offer.ID, CreatorID: creators[0].ID, Status: models.MatchStatusPendingApproval, CampaignCode: "CCCC4444"}))
}

func TestReserveCampaignCodeOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ok, err := ReserveCampaignCode(ctx, db, "DDDD5555")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ReserveCampaignCode(ctx, db, "DDDD5555")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailWithStrikeOnce(t *testing.T) {
	db := openTestDB(t)
	offer, creators := seedOffer(t, db, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	match := &models.Match{OfferID: offer.ID, CreatorID: creators[0].ID, Status: models.MatchStatusAccepted, CampaignCode: "EEEE6666", AcceptedAt: &now}
	require.NoError(t, InsertMatch(ctx, db, match))
	require.NoError(t, InsertDeliverable(ctx, db, &models.Deliverable{
		MatchID:      match.ID,
		Status:       models.DeliverableStatusDue,
		ExpectedType: models.DeliverableTypeReels,
		DueAt:        now.Add(-time.Hour),
	}))

	store := NewLifecycleStore(db)
	overdue, err := store.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	failed, struck, err := store.FailWithStrike(ctx, overdue[0], models.FailureReasonMissedDeadline, now)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.True(t, struck)

	failed, struck, err = store.FailWithStrike(ctx, overdue[0], models.FailureReasonMissedDeadline, now)
	require.NoError(t, err)
	assert.False(t, failed)
	assert.False(t, struck)

	count, err := CountStrikes(ctx, db, creators[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	overdue, err = store.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestSetOfferStatusIsConditional(t *testing.T) {
	db := openTestDB(t)
	offer, _ := seedOffer(t, db, 1)
	ctx := context.Background()
	now := time.Now()

	ok, err := SetOfferStatus(ctx, db, offer.ID, offer.BrandID, []models.OfferStatus{models.OfferStatusDraft}, models.OfferStatusPublished, now)
	require.NoError(t, err)
	assert.False(t, ok, "already published")

	ok, err = SetOfferStatus(ctx, db, offer.ID, offer.BrandID+1, []models.OfferStatus{models.OfferStatusPublished}, models.OfferStatusArchived, now)
	require.NoError(t, err)
	assert.False(t, ok, "other brand")

	ok, err = SetOfferStatus(ctx, db, offer.ID, offer.BrandID, []models.OfferStatus{models.OfferStatusPublished}, models.OfferStatusArchived, now)
	require.NoError(t, err)
	assert.True(t, ok)
}
