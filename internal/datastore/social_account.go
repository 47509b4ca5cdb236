package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableSocialAccount(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SocialAccount)(nil)).IfNotExists().
		ForeignKey(`("creator_id") REFERENCES "creator" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SocialAccount)(nil)).Index("index_social_account_creator_id_platform").Unique().IfNotExists().Column("creator_id", "platform").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertSocialAccount(ctx context.Context, db bun.IDB, account *models.SocialAccount) error {
	_, err := db.NewInsert().Model(account).Returning("id").Exec(ctx)
	return err
}

func ListSocialAccounts(ctx context.Context, db bun.IDB, creatorID int64) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := db.NewSelect().Model(&accounts).Where("sa.creator_id = ?", creatorID).Order("sa.platform ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
