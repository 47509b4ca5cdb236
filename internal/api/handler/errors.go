package handler

import (
	"errors"
	"strconv"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"

	"barterhub/internal/api"
	"barterhub/internal/services"
)

// abort renders claim errors as {error: {code, message, details}} with their own status
// and leaves everything else to httpx.
func abort(c echo.Context, err error) error {
	var claimErr *services.ClaimError
	if errors.As(err, &claimErr) {
		if claimErr.Retryable {
			c.Response().Header().Set("Retry-After", strconv.Itoa(1))
		}
		return c.JSON(claimErr.Status, api.ErrorResponse{Error: api.ErrorBody{
			Code:    claimErr.Code,
			Message: claimErr.Message,
			Details: claimErr.Details,
		}})
	}
	return httpx.RestAbort(c, nil, err)
}

func bindAndValidate(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return errorx.Wrap(err, errorx.Invalid)
	}
	if err := c.Validate(payload); err != nil {
		return errorx.Wrap(err, errorx.Validation)
	}
	return nil
}
