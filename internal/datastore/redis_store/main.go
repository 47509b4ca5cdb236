package redis_store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"barterhub/internal/models"
)

const LIFECYCLE_REPORT_HISTORY = 50

var ErrNoReport = errors.New("no lifecycle report recorded")

func dbKeyLifecycleLastReport() string {
	return "lifecycle:report:last"
}

func dbKeyLifecycleReportHistory() string {
	return "lifecycle:report:history"
}

// SaveLifecycleReport stores report as the latest run and prepends it to a capped history.
func SaveLifecycleReport(ctx context.Context, cmd redis.Cmdable, report *models.LifecycleReport) error {
	b, err := msgpack.Marshal(report)
	if err != nil {
		return err
	}

	_, err = cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dbKeyLifecycleLastReport(), b, 0)
		pipe.LPush(ctx, dbKeyLifecycleReportHistory(), b)
		pipe.LTrim(ctx, dbKeyLifecycleReportHistory(), 0, LIFECYCLE_REPORT_HISTORY-1)
		return nil
	})
	return err
}

func GetLastLifecycleReport(ctx context.Context, cmd redis.Cmdable) (*models.LifecycleReport, error) {
	b, err := cmd.Get(ctx, dbKeyLifecycleLastReport()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, err
	}

	var v models.LifecycleReport
	err = msgpack.Unmarshal(b, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListLifecycleReports returns up to num reports, newest first.
func ListLifecycleReports(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.LifecycleReport, error) {
	items, err := cmd.LRange(ctx, dbKeyLifecycleReportHistory(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	reports := make([]*models.LifecycleReport, 0, len(items))
	for _, item := range items {
		var v models.LifecycleReport
		if err := msgpack.Unmarshal([]byte(item), &v); err != nil {
			return nil, err
		}
		reports = append(reports, &v)
	}
	return reports, nil
}
