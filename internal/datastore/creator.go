package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableCreator(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Creator)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func InsertCreator(ctx context.Context, db bun.IDB, creator *models.Creator) error {
	_, err := db.NewInsert().Model(creator).Returning("id").Exec(ctx)
	return err
}

func GetCreator(ctx context.Context, db bun.IDB, creatorID int64) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewSelect().Model(&creator).Where("c.id = ?", creatorID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &creator, nil
}
