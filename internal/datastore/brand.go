package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableBrand(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Brand)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func InsertBrand(ctx context.Context, db bun.IDB, brand *models.Brand) error {
	_, err := db.NewInsert().Model(brand).Returning("id").Exec(ctx)
	return err
}

func GetBrand(ctx context.Context, db bun.IDB, brandID int64) (*models.Brand, error) {
	var brand models.Brand
	err := db.NewSelect().Model(&brand).Where("b.id = ?", brandID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &brand, nil
}
