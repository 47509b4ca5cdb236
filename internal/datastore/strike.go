package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableStrike(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Strike)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Strike)(nil)).Index("index_strike_creator_id").IfNotExists().Column("creator_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertStrike records a strike unless the match already has one.
func InsertStrike(ctx context.Context, db bun.IDB, strike *models.Strike) (bool, error) {
	res, err := db.NewInsert().Model(strike).On("CONFLICT (match_id) DO NOTHING").Exec(ctx)
	return applied(res, err)
}

func CountStrikes(ctx context.Context, db bun.IDB, creatorID int64) (int, error) {
	return db.NewSelect().Model((*models.Strike)(nil)).Where("creator_id = ?", creatorID).Count(ctx)
}

func ListStrikes(ctx context.Context, db bun.IDB, creatorID int64) ([]models.Strike, error) {
	var strikes []models.Strike
	err := db.NewSelect().Model(&strikes).Where("creator_id = ?", creatorID).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return strikes, nil
}

// StrikeStore exposes the strike table to the ledger service.
type StrikeStore struct {
	db *bun.DB
}

func NewStrikeStore(db *bun.DB) *StrikeStore {
	return &StrikeStore{db}
}

func (s *StrikeStore) InsertStrike(ctx context.Context, strike *models.Strike) (bool, error) {
	return InsertStrike(ctx, s.db, strike)
}

func (s *StrikeStore) CountStrikes(ctx context.Context, creatorID int64) (int, error) {
	return CountStrikes(ctx, s.db, creatorID)
}

func (s *StrikeStore) ListStrikes(ctx context.Context, creatorID int64) ([]models.Strike, error) {
	return ListStrikes(ctx, s.db, creatorID)
}
