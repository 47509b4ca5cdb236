package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableDeliverable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Deliverable)(nil)).IfNotExists().
		ForeignKey(`("match_id") REFERENCES "offer_match" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Deliverable)(nil)).Index("index_deliverable_status_due_at").IfNotExists().Column("status", "due_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertDeliverable(ctx context.Context, db bun.IDB, deliverable *models.Deliverable) error {
	_, err := db.NewInsert().Model(deliverable).Returning("id").Exec(ctx)
	return err
}

func GetDeliverableOwner(ctx context.Context, db bun.IDB, deliverableID int64) (*models.DeliverableOwner, error) {
	var owner models.DeliverableOwner
	err := db.NewSelect().
		TableExpr("deliverable AS d").
		ColumnExpr("d.id AS deliverable_id, d.match_id, d.status, d.expected_type, d.submission_url").
		ColumnExpr("m.creator_id, o.brand_id").
		Join("JOIN offer_match AS m ON m.id = d.match_id").
		Join("JOIN offer AS o ON o.id = m.offer_id").
		Where("d.id = ?", deliverableID).
		Scan(ctx, &owner)
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func RecordSubmission(ctx context.Context, db bun.IDB, deliverableID int64, url, note string, at time.Time) (bool, error) {
	res, err := db.NewUpdate().Model((*models.Deliverable)(nil)).
		Set("submission_url = ?", url).
		Set("submission_note = ?", note).
		Set("submitted_at = ?", at).
		Where("id = ?", deliverableID).
		Where("status = ?", models.DeliverableStatusDue).
		Exec(ctx)
	return applied(res, err)
}

func MarkDeliverableVerified(ctx context.Context, db bun.IDB, deliverableID int64, media models.Media, source models.VerificationSource, at time.Time) (bool, error) {
	res, err := db.NewUpdate().Model((*models.Deliverable)(nil)).
		Set("status = ?", models.DeliverableStatusVerified).
		Set("verified_at = ?", at).
		Set("verification_source = ?", source).
		Set("external_media_id = ?", media.ExternalID).
		Set("permalink = ?", media.Permalink).
		Where("id = ?", deliverableID).
		Where("status = ?", models.DeliverableStatusDue).
		Exec(ctx)
	return applied(res, err)
}

func MarkDeliverableFailed(ctx context.Context, db bun.IDB, deliverableID int64, reason string) (bool, error) {
	res, err := db.NewUpdate().Model((*models.Deliverable)(nil)).
		Set("status = ?", models.DeliverableStatusFailed).
		Set("failure_reason = ?", reason).
		Where("id = ?", deliverableID).
		Where("status = ?", models.DeliverableStatusDue).
		Exec(ctx)
	return applied(res, err)
}

func MarkReminderSent(ctx context.Context, db bun.IDB, deliverableID int64, at time.Time) (bool, error) {
	res, err := db.NewUpdate().Model((*models.Deliverable)(nil)).
		Set("reminder_sent_at = ?", at).
		Where("id = ?", deliverableID).
		Where("status = ?", models.DeliverableStatusDue).
		Where("reminder_sent_at IS NULL").
		Exec(ctx)
	return applied(res, err)
}

func MarkDeliverableChecked(ctx context.Context, db bun.IDB, deliverableID int64, at time.Time) error {
	_, err := db.NewUpdate().Model((*models.Deliverable)(nil)).
		Set("last_checked_at = ?", at).
		Where("id = ?", deliverableID).
		Where("status = ?", models.DeliverableStatusDue).
		Exec(ctx)
	return err
}
