package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

// SeedConfig inserts a default value without overwriting one an operator already changed.
func SeedConfig(ctx context.Context, db bun.IDB, config *models.Config) (bool, error) {
	res, err := db.NewInsert().Model(config).On("CONFLICT (key) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func UpsertConfig(ctx context.Context, db bun.IDB, config *models.Config) error {
	_, err := db.NewInsert().Model(config).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("description = EXCLUDED.description").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func GetConfigByKey(ctx context.Context, db bun.IDB, key string) (*models.Config, error) {
	var config models.Config
	err := db.NewSelect().Model(&config).Where("key = ?", key).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func ListConfigs(ctx context.Context, db bun.IDB) ([]models.Config, error) {
	var configs []models.Config
	err := db.NewSelect().Model(&configs).Order("key ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return configs, nil
}
