package main

import (
	"context"
	"errors"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"

	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/services"
)

type LifecycleJob struct {
	lifecycle *services.ServiceLifecycle
	config    *services.ServiceConfig
	alerter   interfaces.Alerter
	log       *logrus.Entry
}

func NewLifecycleJob(injector *do.Injector) (*LifecycleJob, error) {
	lifecycle, err := do.Invoke[*services.ServiceLifecycle](injector)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	alerter, err := do.Invoke[interfaces.Alerter](injector)
	if err != nil {
		return nil, err
	}

	return &LifecycleJob{lifecycle, serviceConfig, alerter, logger.For("cron")}, nil
}

func (j *LifecycleJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	schedule, err := j.config.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_LIFECYCLE, services.DEFAULT_CRONJOB_TIME_LIFECYCLE)
	if err != nil {
		j.log.WithError(err).Warn("schedule not readable, using default")
	}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = services.DEFAULT_CRONJOB_TIME_LIFECYCLE
	}

	_, err = cronRunner.AddFunc(schedule, func() {
		// a failed run is alerted inside run; the schedule keeps going
		//nolint:errcheck
		j.run(context.Background())
	})
	if err != nil {
		return err
	}
	j.log.WithField("cron", schedule).Info("lifecycle cronjob scheduled")
	return nil
}

func (j *LifecycleJob) run(ctx context.Context) error {
	_, err := j.lifecycle.Run(ctx)
	if errors.Is(err, services.ErrLifecycleLocked) {
		j.log.Info("previous reconcile still running, skipped")
		return nil
	}
	if err != nil {
		j.log.WithError(err).Error("lifecycle reconcile failed")
		j.alerter.Alert(ctx, "lifecycle reconcile failed", err)
		return err
	}
	return nil
}
