package handler

import (
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"barterhub/internal/api"
	"barterhub/internal/services"
)

type groupDeliverable struct {
	container *do.Injector
}

func (gr *groupDeliverable) Submit(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.SubmitDeliverableRequest
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceDeliverable, err := do.Invoke[*services.ServiceDeliverable](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceDeliverable.Submit(c.Request().Context(), principal.ID, payload.ID, payload.URL, payload.Note)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}

func (gr *groupDeliverable) Verify(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.VerifyDeliverableRequest
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceDeliverable, err := do.Invoke[*services.ServiceDeliverable](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceDeliverable.Verify(c.Request().Context(), principal.ID, payload.ID, payload.Permalink)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}

func (gr *groupDeliverable) MyStrikes(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceStrike, err := do.Invoke[*services.ServiceStrike](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	strikes, err := serviceStrike.List(c.Request().Context(), principal.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{
		"count":   len(strikes),
		"strikes": strikes,
	}, nil)
}
