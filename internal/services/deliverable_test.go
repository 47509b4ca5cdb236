package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub/internal/logger"
	"barterhub/internal/models"
)

func newTestServiceDeliverable() (*ServiceDeliverable, *memLifecycleStore) {
	store := newMemLifecycleStore(&memStrikeStore{})
	return &ServiceDeliverable{store, func() time.Time { return testNow }, logger.For("deliverable")}, store
}

func TestSubmitKeepsDeliverableDue(t *testing.T) {
	service, store := newTestServiceDeliverable()
	store.add(dueRow(1, testNow.AddDate(0, 0, 3)))

	err := service.Submit(context.Background(), testCreatorID, 1, "https://www.tiktok.com/@me/video/1", "posted")
	require.NoError(t, err)

	row := store.get(1)
	assert.Equal(t, models.DeliverableStatusDue, row.Status)
	assert.Equal(t, "https://www.tiktok.com/@me/video/1", row.SubmissionURL)
	require.NotNil(t, row.SubmittedAt)
}

func TestSubmitRejects(t *testing.T) {
	service, store := newTestServiceDeliverable()
	store.add(dueRow(1, testNow.AddDate(0, 0, 3)))
	closed := dueRow(2, testNow)
	closed.Status = models.DeliverableStatusFailed
	store.add(closed)
	ctx := context.Background()

	assert.Error(t, service.Submit(ctx, testCreatorID+1, 1, "", ""), "other creator")
	assert.Error(t, service.Submit(ctx, testCreatorID, 1, "javascript:alert(1)", ""), "bad url")
	assert.Error(t, service.Submit(ctx, testCreatorID, 2, "", ""), "closed")
	assert.Error(t, service.Submit(ctx, testCreatorID, 99, "", ""), "missing")
	assert.Nil(t, store.get(1).SubmittedAt)
}

func TestManualVerify(t *testing.T) {
	service, store := newTestServiceDeliverable()
	row := dueRow(1, testNow.AddDate(0, 0, 3))
	row.ExpectedType = models.DeliverableTypeUGCOnly
	row.SubmissionURL = "https://drive.example.com/ugc.mp4"
	store.add(row)
	ctx := context.Background()

	require.Error(t, service.Verify(ctx, testBrandID+1, 1, ""))
	require.NoError(t, service.Verify(ctx, testBrandID, 1, ""))

	got := store.get(1)
	assert.Equal(t, models.DeliverableStatusVerified, got.Status)
	assert.Equal(t, models.VerificationSourceManual, got.VerificationSource)
	assert.Equal(t, "https://drive.example.com/ugc.mp4", got.Permalink)

	// already terminal
	require.Error(t, service.Verify(ctx, testBrandID, 1, ""))
}
