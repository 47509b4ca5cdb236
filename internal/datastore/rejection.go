package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableOfferRejection(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.OfferRejection)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.OfferRejection)(nil)).Index("index_offer_rejection_offer_id_creator_id").Unique().IfNotExists().Column("offer_id", "creator_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertOfferRejection(ctx context.Context, db bun.IDB, rejection *models.OfferRejection) error {
	_, err := db.NewInsert().Model(rejection).On("CONFLICT (offer_id, creator_id) DO NOTHING").Exec(ctx)
	return err
}

func IsOfferRejected(ctx context.Context, db bun.IDB, offerID, creatorID int64) (bool, error) {
	return db.NewSelect().Model((*models.OfferRejection)(nil)).
		Where("offer_id = ?", offerID).
		Where("creator_id = ?", creatorID).
		Exists(ctx)
}
