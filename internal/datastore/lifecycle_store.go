package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

type LifecycleStore struct {
	db *bun.DB
}

func NewLifecycleStore(db *bun.DB) *LifecycleStore {
	return &LifecycleStore{db}
}

// ListReminderCandidates returns DUE deliverables due in (from, to] that were never reminded.
func (s *LifecycleStore) ListReminderCandidates(ctx context.Context, from, to time.Time, limit int) ([]models.ReminderCandidate, error) {
	var rows []models.ReminderCandidate
	err := s.db.NewSelect().
		TableExpr("deliverable AS d").
		ColumnExpr("d.id AS deliverable_id, d.match_id, d.due_at").
		ColumnExpr("o.title AS offer_title, m.campaign_code").
		ColumnExpr("c.display_name AS creator_name, c.email AS creator_email, c.telegram_chat_id AS creator_chat_id").
		Join("JOIN offer_match AS m ON m.id = d.match_id").
		Join("JOIN offer AS o ON o.id = m.offer_id").
		Join("JOIN creator AS c ON c.id = m.creator_id").
		Where("d.status = ?", models.DeliverableStatusDue).
		Where("d.reminder_sent_at IS NULL").
		Where("d.due_at > ?", from).
		Where("d.due_at <= ?", to).
		OrderExpr("d.due_at ASC, d.id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LifecycleStore) MarkReminderSent(ctx context.Context, deliverableID int64, at time.Time) (bool, error) {
	return MarkReminderSent(ctx, s.db, deliverableID, at)
}

// ListVerificationCandidates pairs DUE REELS/FEED deliverables with the creator's usable account
// on platform, for offers that allow it. Rows checked least recently come first so a full page
// of unmatched deliverables cannot starve the rest.
func (s *LifecycleStore) ListVerificationCandidates(ctx context.Context, platform models.Platform, now time.Time, limit int) ([]models.VerificationCandidate, error) {
	var rows []models.VerificationCandidate
	err := s.db.NewSelect().
		TableExpr("deliverable AS d").
		ColumnExpr("d.id AS deliverable_id, d.match_id, d.expected_type").
		ColumnExpr("m.campaign_code, m.accepted_at").
		ColumnExpr("o.metadata AS offer_metadata").
		ColumnExpr("b.instagram_handle AS brand_instagram, b.tiktok_handle AS brand_tiktok").
		ColumnExpr("sa.id AS account_id, sa.platform, sa.external_user_id, sa.handle, sa.access_token, sa.token_expires_at").
		Join("JOIN offer_match AS m ON m.id = d.match_id").
		Join("JOIN offer AS o ON o.id = m.offer_id").
		Join("JOIN brand AS b ON b.id = o.brand_id").
		Join("JOIN social_account AS sa ON sa.creator_id = m.creator_id AND sa.platform = ?", platform).
		Where("d.status = ?", models.DeliverableStatusDue).
		Where("d.expected_type IN (?)", bun.In([]models.DeliverableType{models.DeliverableTypeReels, models.DeliverableTypeFeed})).
		Where("m.accepted_at IS NOT NULL").
		Where("sa.access_token <> ''").
		Where("(sa.token_expires_at IS NULL OR sa.token_expires_at > ?)", now).
		Where("(COALESCE(jsonb_array_length(o.metadata -> 'platforms'), 0) = 0 OR o.metadata -> 'platforms' @> jsonb_build_array(?::text))", string(platform)).
		OrderExpr("d.last_checked_at ASC NULLS FIRST, d.id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LifecycleStore) MarkChecked(ctx context.Context, deliverableID int64, at time.Time) error {
	return MarkDeliverableChecked(ctx, s.db, deliverableID, at)
}

func (s *LifecycleStore) MarkVerified(ctx context.Context, deliverableID int64, media models.Media, source models.VerificationSource, at time.Time) (bool, error) {
	return MarkDeliverableVerified(ctx, s.db, deliverableID, media, source, at)
}

func (s *LifecycleStore) ListOverdue(ctx context.Context, now time.Time, limit int) ([]models.OverdueCandidate, error) {
	var rows []models.OverdueCandidate
	err := s.db.NewSelect().
		TableExpr("deliverable AS d").
		ColumnExpr("d.id AS deliverable_id, d.match_id, m.creator_id, d.due_at").
		ColumnExpr("o.title AS offer_title").
		ColumnExpr("c.display_name AS creator_name, c.email AS creator_email, c.telegram_chat_id AS creator_chat_id").
		Join("JOIN offer_match AS m ON m.id = d.match_id").
		Join("JOIN offer AS o ON o.id = m.offer_id").
		Join("JOIN creator AS c ON c.id = m.creator_id").
		Where("d.status = ?", models.DeliverableStatusDue).
		Where("d.due_at < ?", now).
		OrderExpr("d.due_at ASC, d.id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LifecycleStore) FailWithStrike(ctx context.Context, candidate models.OverdueCandidate, reason string, at time.Time) (bool, bool, error) {
	var failed, struck bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		failed, err = MarkDeliverableFailed(ctx, tx, candidate.DeliverableID, reason)
		if err != nil || !failed {
			return err
		}

		struck, err = InsertStrike(ctx, tx, &models.Strike{
			CreatorID: candidate.CreatorID,
			MatchID:   candidate.MatchID,
			Reason:    reason,
			CreatedAt: at,
		})
		return err
	})
	if err != nil {
		return false, false, err
	}
	return failed, struck, nil
}

func (s *LifecycleStore) GetDeliverableOwner(ctx context.Context, deliverableID int64) (*models.DeliverableOwner, error) {
	return GetDeliverableOwner(ctx, s.db, deliverableID)
}

func (s *LifecycleStore) RecordSubmission(ctx context.Context, deliverableID int64, url, note string, at time.Time) (bool, error) {
	return RecordSubmission(ctx, s.db, deliverableID, url, note, at)
}
