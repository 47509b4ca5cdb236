package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"barterhub/internal/datastore/redis_store"
	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
	"barterhub/internal/telemetry"
)

// ServiceLifecycle reconciles DUE deliverables: reminders, automatic verification against
// recent social media, and failing overdue rows with a strike. Every write it issues is
// conditional, so overlapping runs are safe.
type ServiceLifecycle struct {
	store    interfaces.LifecycleStore
	listers  map[models.Platform]interfaces.MediaLister
	notifier interfaces.Notifier
	policy   PolicySource
	reports  redis.UniversalClient
	rs       *redsync.Redsync
	now      func() time.Time
	log      *logrus.Entry
}

func NewServiceLifecycle(container *do.Injector) (*ServiceLifecycle, error) {
	store, err := do.Invoke[interfaces.LifecycleStore](container)
	if err != nil {
		return nil, err
	}

	listers, err := do.Invoke[[]interfaces.MediaLister](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	policy, err := do.Invoke[PolicySource](container)
	if err != nil {
		return nil, err
	}

	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	service := newServiceLifecycle(store, listers, notifier, policy, redisDB)
	service.rs = rs
	return service, nil
}

func newServiceLifecycle(store interfaces.LifecycleStore, listers []interfaces.MediaLister, notifier interfaces.Notifier, policy PolicySource, reports redis.UniversalClient) *ServiceLifecycle {
	byPlatform := make(map[models.Platform]interfaces.MediaLister, len(listers))
	for _, lister := range listers {
		byPlatform[lister.Platform()] = lister
	}
	return &ServiceLifecycle{
		store:    store,
		listers:  byPlatform,
		notifier: notifier,
		policy:   policy,
		reports:  reports,
		now:      time.Now,
		log:      logger.For("lifecycle"),
	}
}

// Run executes one reconcile. A failure to list candidates aborts the run; failures on
// a single deliverable are recorded in the report and the run moves on.
func (service *ServiceLifecycle) Run(ctx context.Context) (report *models.LifecycleReport, err error) {
	ctx, span := telemetry.Start(ctx, "lifecycle.run")
	defer func() { telemetry.End(span, err) }()

	if service.rs != nil {
		mutex := service.rs.NewMutex(LockKeyLifecycleReconcile(), redsync.WithExpiry(LIFECYCLE_LOCK_EXPIRY))
		if err := mutex.TryLockContext(ctx); err != nil {
			return nil, lockError(err)
		}
		// nolint:errcheck
		defer mutex.UnlockContext(context.WithoutCancel(ctx))
	}

	policy := service.policy.LifecyclePolicy(ctx)
	report = &models.LifecycleReport{StartedAt: service.now(), Results: []models.LifecycleRowResult{}}

	if err := service.remind(ctx, policy, report); err != nil {
		return nil, fmt.Errorf("reminder pass: %w", err)
	}

	for _, platform := range policy.Platforms {
		if err := service.verify(ctx, platform, policy, report); err != nil {
			return nil, fmt.Errorf("verification pass %s: %w", platform, err)
		}
	}

	if err := service.expire(ctx, policy, report); err != nil {
		return nil, fmt.Errorf("overdue pass: %w", err)
	}

	report.FinishedAt = service.now()
	span.SetAttributes(
		attribute.Int("lifecycle.processed", report.Processed),
		attribute.Int("lifecycle.verified", report.Verified),
		attribute.Int("lifecycle.failed", report.Failed),
	)

	if service.reports != nil {
		if err := redis_store.SaveLifecycleReport(ctx, service.reports, report); err != nil {
			service.log.WithError(err).Warn("lifecycle report not stored")
		}
	}

	service.log.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"processed":  report.Processed,
		"reminded":   report.Reminded,
		"verified":   report.Verified,
		"failed":     report.Failed,
		"strikes":    report.StrikesIssued,
		"took":       report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("lifecycle reconcile finished")
	return report, nil
}

// lockError reports ErrLifecycleLocked only when another run holds the lock. Anything
// else, e.g. redis being unreachable, is a failed run.
func lockError(err error) error {
	if errors.As(err, new(*redsync.ErrTaken)) || errors.Is(err, redsync.ErrFailed) {
		return ErrLifecycleLocked
	}
	return fmt.Errorf("acquire reconcile lock: %w", err)
}

func (service *ServiceLifecycle) LastReport(ctx context.Context) (*models.LifecycleReport, error) {
	if service.reports == nil {
		return nil, redis_store.ErrNoReport
	}
	return redis_store.GetLastLifecycleReport(ctx, service.reports)
}

func (service *ServiceLifecycle) ReportHistory(ctx context.Context, limit int) ([]*models.LifecycleReport, error) {
	if service.reports == nil {
		return []*models.LifecycleReport{}, nil
	}
	if limit <= 0 || limit > redis_store.LIFECYCLE_REPORT_HISTORY {
		limit = redis_store.LIFECYCLE_REPORT_HISTORY
	}
	return redis_store.ListLifecycleReports(ctx, service.reports, limit)
}

// remind stamps before notifying: a crash between the two loses one reminder instead of
// sending it twice.
func (service *ServiceLifecycle) remind(ctx context.Context, policy LifecyclePolicy, report *models.LifecycleReport) error {
	now := service.now()
	rows, err := service.store.ListReminderCandidates(ctx, now, now.Add(policy.ReminderWindow), policy.ReminderLimit)
	if err != nil {
		return err
	}
	report.Candidates += len(rows)

	for _, row := range rows {
		result := models.LifecycleRowResult{Pass: models.PassReminder, DeliverableID: row.DeliverableID}

		stamped, err := service.store.MarkReminderSent(ctx, row.DeliverableID, now)
		switch {
		case err != nil:
			result.Note = err.Error()
		case !stamped:
			result.OK = true
			result.Note = "already reminded or no longer due"
		default:
			delivery := service.notifier.Notify(ctx, reminderNotification(row, now))
			result.OK = delivery.Any()
			if result.OK {
				report.Reminded++
			} else {
				result.Note = "no channel delivered the reminder"
			}
		}
		report.Add(result)
	}
	return nil
}

func (service *ServiceLifecycle) verify(ctx context.Context, platform models.Platform, policy LifecyclePolicy, report *models.LifecycleReport) error {
	lister, ok := service.listers[platform]
	if !ok {
		return fmt.Errorf("no media lister configured for %s", platform)
	}

	rows, err := service.store.ListVerificationCandidates(ctx, platform, service.now(), policy.VerificationLimit)
	if err != nil {
		return err
	}
	report.Candidates += len(rows)

	for _, row := range rows {
		result := service.verifyRow(ctx, lister, row, policy.MediaPageSize)
		if result.Verified {
			report.Verified++
		}
		report.Add(result)
	}
	return nil
}

func (service *ServiceLifecycle) verifyRow(ctx context.Context, lister interfaces.MediaLister, row models.VerificationCandidate, pageSize int) models.LifecycleRowResult {
	result := models.LifecycleRowResult{Pass: models.PassVerification, Platform: row.Platform, DeliverableID: row.DeliverableID}
	now := service.now()

	media, err := lister.ListRecentMedia(ctx, row.SocialAccount(), pageSize)
	if err != nil {
		if IsTimeout(err) {
			result.Note = "timeout (retryable): " + err.Error()
		} else {
			result.Note = "media fetch failed: " + err.Error()
		}
		service.markChecked(ctx, row.DeliverableID, now)
		return result
	}

	hit, found := FindMatchingMedia(media, MediaCriteria{
		CampaignCode: row.CampaignCode,
		BrandMention: row.BrandMention(),
		ExpectedType: row.ExpectedType,
		NotBefore:    row.AcceptedAt,
	})
	if !found {
		result.OK = true
		result.Note = "no matching media yet"
		service.markChecked(ctx, row.DeliverableID, now)
		return result
	}

	verified, err := service.store.MarkVerified(ctx, row.DeliverableID, hit, models.VerificationSourceAuto, now)
	if err != nil {
		result.Note = err.Error()
		return result
	}
	result.OK = true
	result.Verified = verified
	if !verified {
		result.Note = "no longer due"
	}
	return result
}

// markChecked moves the row to the back of the verification queue.
func (service *ServiceLifecycle) markChecked(ctx context.Context, deliverableID int64, at time.Time) {
	if err := service.store.MarkChecked(ctx, deliverableID, at); err != nil {
		service.log.WithError(err).WithField("deliverable_id", deliverableID).Warn("last checked not stamped")
	}
}

func (service *ServiceLifecycle) expire(ctx context.Context, policy LifecyclePolicy, report *models.LifecycleReport) error {
	now := service.now()
	rows, err := service.store.ListOverdue(ctx, now, policy.OverdueLimit)
	if err != nil {
		return err
	}
	report.Candidates += len(rows)

	for _, row := range rows {
		result := models.LifecycleRowResult{Pass: models.PassOverdue, DeliverableID: row.DeliverableID}

		failed, struck, err := service.store.FailWithStrike(ctx, row, models.FailureReasonMissedDeadline, now)
		if err != nil {
			result.Note = err.Error()
			report.Add(result)
			continue
		}

		result.OK = true
		if !failed {
			result.Note = "no longer due"
			report.Add(result)
			continue
		}

		report.Failed++
		result.StrikeIssued = struck
		if struck {
			report.StrikesIssued++
		}
		service.notifier.Notify(ctx, failedNotification(row))
		report.Add(result)
	}
	return nil
}

func reminderNotification(row models.ReminderCandidate, now time.Time) models.Notification {
	left := row.DueAt.Sub(now).Round(time.Hour)
	return models.Notification{
		ID:      uuid.NewString(),
		Kind:    models.NotificationDeliverableDue,
		To:      row.Contact(),
		Subject: fmt.Sprintf("Reminder: your post for %s is due soon", row.OfferTitle),
		Body: fmt.Sprintf(
			"Your post for %q is due on %s (in about %s).\nRemember to include your campaign code %s in the caption.",
			row.OfferTitle, row.DueAt.UTC().Format("Jan 2, 2006 15:04 MST"), left, row.CampaignCode,
		),
	}
}

func failedNotification(row models.OverdueCandidate) models.Notification {
	return models.Notification{
		ID:      uuid.NewString(),
		Kind:    models.NotificationDeliverableFailed,
		To:      row.Contact(),
		Subject: fmt.Sprintf("Missed deadline: %s", row.OfferTitle),
		Body: fmt.Sprintf(
			"We could not find your post for %q before %s. The deliverable was closed and a strike was added to your account.",
			row.OfferTitle, row.DueAt.UTC().Format("Jan 2, 2006 15:04 MST"),
		),
	}
}
