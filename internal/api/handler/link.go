package handler

import (
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"barterhub/internal/services"
)

type groupLink struct {
	container *do.Injector
}

// Share redirects a campaign code link to the offer page so visits can be attributed.
func (gr *groupLink) Share(c echo.Context) error {
	serviceLink, err := do.Invoke[*services.ServiceLink](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	target, err := serviceLink.Resolve(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return c.Redirect(http.StatusFound, target)
}
