package datastore

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// CreateTables creates every table in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	steps := []func(context.Context, *bun.DB) error{
		CreateTableConfig,
		CreateTableBrand,
		CreateTableOffer,
		CreateTableCreator,
		CreateTableSocialAccount,
		CreateTableMatch,
		CreateTableDeliverable,
		CreateTableStrike,
		CreateTableOfferRejection,
		CreateTableManualShipment,
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func applied(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
