package handler

import (
	"context"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"barterhub/internal/api"
	"barterhub/internal/models"
	"barterhub/internal/services"
)

type groupOffer struct {
	container *do.Injector
}

func (gr *groupOffer) Claim(c echo.Context) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.IDParam
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceClaim, err := do.Invoke[*services.ServiceClaim](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceClaim.Claim(c.Request().Context(), services.ClaimRequest{
		OfferID:   payload.ID,
		CreatorID: principal.ID,
		ClientIP:  c.RealIP(),
	})
	if err != nil {
		return abort(c, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupOffer) Publish(c echo.Context) error {
	return gr.transition(c, (*services.ServiceOffer).Publish)
}

func (gr *groupOffer) Archive(c echo.Context) error {
	return gr.transition(c, (*services.ServiceOffer).Archive)
}

func (gr *groupOffer) transition(c echo.Context, apply func(*services.ServiceOffer, context.Context, int64, int64) (*models.Offer, error)) error {
	principal, err := ResolvePrincipal(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload api.IDParam
	if err := bindAndValidate(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceOffer, err := do.Invoke[*services.ServiceOffer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	offer, err := apply(serviceOffer, c.Request().Context(), principal.ID, payload.ID)
	if err != nil {
		return abort(c, err)
	}

	return httpx.RestAbort(c, offer, nil)
}
