package handler

import (
	"errors"
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"barterhub/internal/api"
	"barterhub/internal/datastore/redis_store"
	"barterhub/internal/interfaces"
	"barterhub/internal/services"
)

type groupLifecycle struct {
	container *do.Injector
}

func (gr *groupLifecycle) Run(c echo.Context) error {
	serviceLifecycle, err := do.Invoke[*services.ServiceLifecycle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	report, err := serviceLifecycle.Run(c.Request().Context())
	if errors.Is(err, services.ErrLifecycleLocked) {
		return lifecycleLocked(c, err)
	}
	if err != nil {
		if alerter, alertErr := do.Invoke[interfaces.Alerter](gr.container); alertErr == nil {
			alerter.Alert(c.Request().Context(), "lifecycle reconcile failed", err)
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, report, nil)
}

func (gr *groupLifecycle) Last(c echo.Context) error {
	serviceLifecycle, err := do.Invoke[*services.ServiceLifecycle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	report, err := serviceLifecycle.LastReport(c.Request().Context())
	if errors.Is(err, redis_store.ErrNoReport) {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, report, nil)
}

func (gr *groupLifecycle) History(c echo.Context) error {
	var payload api.ReportHistoryRequest
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLifecycle, err := do.Invoke[*services.ServiceLifecycle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	reports, err := serviceLifecycle.ReportHistory(c.Request().Context(), payload.Limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, reports, nil)
}

// lifecycleLocked reports a run skipped because another one holds the lock.
func lifecycleLocked(c echo.Context, err error) error {
	return c.JSON(http.StatusConflict, api.ErrorResponse{Error: api.ErrorBody{
		Code:    "LIFECYCLE_RUNNING",
		Message: err.Error(),
	}})
}
