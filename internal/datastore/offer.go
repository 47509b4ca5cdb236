package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableOffer(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Offer)(nil)).IfNotExists().
		ForeignKey(`("brand_id") REFERENCES "brand" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Offer)(nil)).Index("index_offer_brand_id_status").IfNotExists().Column("brand_id", "status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertOffer(ctx context.Context, db bun.IDB, offer *models.Offer) error {
	_, err := db.NewInsert().Model(offer).Returning("id").Exec(ctx)
	return err
}

// GetOffer loads the offer with its brand.
func GetOffer(ctx context.Context, db bun.IDB, offerID int64) (*models.Offer, error) {
	var offer models.Offer
	err := db.NewSelect().Model(&offer).Relation("Brand").Where("o.id = ?", offerID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// LockOffer takes the row lock that serializes claims on one offer.
func LockOffer(ctx context.Context, tx bun.Tx, offerID int64) (*models.Offer, error) {
	var offer models.Offer
	err := tx.NewSelect().Model(&offer).Where("o.id = ?", offerID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func SetOfferStatus(ctx context.Context, db bun.IDB, offerID, brandID int64, from []models.OfferStatus, to models.OfferStatus, at time.Time) (bool, error) {
	q := db.NewUpdate().Model((*models.Offer)(nil)).
		Set("status = ?", to).
		Where("id = ?", offerID).
		Where("brand_id = ?", brandID).
		Where("status IN (?)", bun.In(from))
	switch to {
	case models.OfferStatusPublished:
		q = q.Set("published_at = ?", at)
	case models.OfferStatusArchived:
		q = q.Set("archived_at = ?", at)
	}

	res, err := q.Exec(ctx)
	return applied(res, err)
}
