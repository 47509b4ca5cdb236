package handler

import (
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"barterhub/internal/api"
	"barterhub/internal/services"
)

type groupMatch struct {
	container *do.Injector
}

func (gr *groupMatch) Approve(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.IDParam
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMatch, err := do.Invoke[*services.ServiceMatch](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceMatch.Approve(c.Request().Context(), principal.ID, payload.ID)
	if err != nil {
		return abort(c, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupMatch) Decline(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.DeclineMatchRequest
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMatch, err := do.Invoke[*services.ServiceMatch](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	match, err := serviceMatch.Decline(c.Request().Context(), principal.ID, payload.ID, payload.Reason)
	if err != nil {
		return abort(c, err)
	}

	return httpx.RestAbort(c, match, nil)
}

func (gr *groupMatch) Cancel(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.IDParam
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMatch, err := do.Invoke[*services.ServiceMatch](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	match, err := serviceMatch.Cancel(c.Request().Context(), principal.ID, payload.ID)
	if err != nil {
		return abort(c, err)
	}

	return httpx.RestAbort(c, match, nil)
}
