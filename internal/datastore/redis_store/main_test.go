package redis_store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub/internal/models"
)

func testRedis(t *testing.T) redis.UniversalClient {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() {
		client.Del(context.Background(), dbKeyLifecycleLastReport(), dbKeyLifecycleReportHistory())
		client.Close()
	})
	return client
}

func TestLifecycleReportRoundTrip(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()

	_, err := GetLastLifecycleReport(ctx, client)
	assert.ErrorIs(t, err, ErrNoReport)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		report := &models.LifecycleReport{StartedAt: started.Add(time.Duration(i) * time.Hour), Candidates: i}
		report.Add(models.LifecycleRowResult{Pass: models.PassOverdue, DeliverableID: int64(i), OK: true, StrikeIssued: true})
		require.NoError(t, SaveLifecycleReport(ctx, client, report))
	}

	last, err := GetLastLifecycleReport(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Candidates)
	assert.True(t, last.StartedAt.Equal(started.Add(3*time.Hour)))
	require.Len(t, last.Results, 1)
	assert.True(t, last.Results[0].StrikeIssued)

	history, err := ListLifecycleReports(ctx, client, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].Candidates)
	assert.Equal(t, 2, history[1].Candidates)
}
