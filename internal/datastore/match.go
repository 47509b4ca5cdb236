package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableMatch(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Match)(nil)).IfNotExists().
		ForeignKey(`("offer_id") REFERENCES "offer" ("id") ON DELETE CASCADE`).
		ForeignKey(`("creator_id") REFERENCES "creator" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.CampaignCode)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// at most one non-terminal match per (offer, creator)
	_, err = db.NewRaw(`
		create unique index if not exists index_offer_match_active_pair
			on offer_match (offer_id, creator_id)
			where status in (?);`, bun.In(models.NonTerminalMatchStatuses)).Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Match)(nil)).Index("index_offer_match_offer_id_status").IfNotExists().Column("offer_id", "status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetMatch(ctx context.Context, db bun.IDB, matchID int64) (*models.Match, error) {
	var match models.Match
	err := db.NewSelect().Model(&match).Where("m.id = ?", matchID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func GetMatchForUpdate(ctx context.Context, tx bun.Tx, matchID int64) (*models.Match, error) {
	var match models.Match
	err := tx.NewSelect().Model(&match).Where("m.id = ?", matchID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func HasActiveMatch(ctx context.Context, db bun.IDB, offerID, creatorID int64) (bool, error) {
	return db.NewSelect().Model((*models.Match)(nil)).
		Where("m.offer_id = ?", offerID).
		Where("m.creator_id = ?", creatorID).
		Where("m.status IN (?)", bun.In(models.NonTerminalMatchStatuses)).
		Exists(ctx)
}

func CountActiveMatches(ctx context.Context, db bun.IDB, offerID int64) (int, error) {
	return db.NewSelect().Model((*models.Match)(nil)).
		Where("m.offer_id = ?", offerID).
		Where("m.status IN (?)", bun.In(models.NonTerminalMatchStatuses)).
		Count(ctx)
}

func InsertMatch(ctx context.Context, db bun.IDB, match *models.Match) error {
	_, err := db.NewInsert().Model(match).Returning("id").Exec(ctx)
	return err
}

// UpdateMatchStatus moves a match from one status to another and reports whether the row was still in `from`.
func UpdateMatchStatus(ctx context.Context, db bun.IDB, matchID int64, from, to models.MatchStatus, acceptedAt *time.Time) (bool, error) {
	q := db.NewUpdate().Model((*models.Match)(nil)).
		Set("status = ?", to).
		Set("updated_at = current_timestamp").
		Where("id = ?", matchID).
		Where("status = ?", from)
	if acceptedAt != nil {
		q = q.Set("accepted_at = ?", *acceptedAt)
	}

	res, err := q.Exec(ctx)
	return applied(res, err)
}

// ReserveCampaignCode claims code if nobody holds it yet.
func ReserveCampaignCode(ctx context.Context, db bun.IDB, code string) (bool, error) {
	res, err := db.NewInsert().Model(&models.CampaignCode{Code: code, CreatedAt: time.Now()}).On("CONFLICT (code) DO NOTHING").Exec(ctx)
	return applied(res, err)
}

type ShareTarget struct {
	OfferID  int64                `bun:"offer_id"`
	MatchID  int64                `bun:"match_id"`
	Metadata models.OfferMetadata `bun:"metadata,type:jsonb"`
}

func GetShareTarget(ctx context.Context, db bun.IDB, code string) (*ShareTarget, error) {
	var target ShareTarget
	err := db.NewSelect().
		TableExpr("offer_match AS m").
		ColumnExpr("o.id AS offer_id, m.id AS match_id, o.metadata").
		Join("JOIN offer AS o ON o.id = m.offer_id").
		Where("m.campaign_code = ?", code).
		Limit(1).
		Scan(ctx, &target)
	if err != nil {
		return nil, err
	}
	return &target, nil
}
