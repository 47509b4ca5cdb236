package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"

	"barterhub/internal/api"
	"barterhub/internal/models"
)

type ctxKey string

var ctxKeyAuthPrincipal ctxKey = "AUTH_PRINCIPAL"

const HeaderCronSecret = "X-Cron-Secret"

func Authn(verifier interface {
	Validate(token string) (*models.Principal, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				return next(c)
			}

			principal, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to detailed information
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := context.WithValue(c.Request().Context(), ctxKeyAuthPrincipal, principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole terminates requests without a principal of the given role.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := ResolvePrincipal(c.Request().Context())
			if err != nil {
				//nolint:errcheck
				httpx.Abort(c, err, -1)
				return nil
			}
			if principal.Role != role {
				return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: api.ErrorBody{
					Code:    "FORBIDDEN",
					Message: "this endpoint is for " + string(role) + " accounts",
				}})
			}
			return next(c)
		}
	}
}

func ResolvePrincipal(ctx context.Context) (*models.Principal, error) {
	principal, ok := ctx.Value(ctxKeyAuthPrincipal).(*models.Principal)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}
	return principal, nil
}

// CronSecret guards the internal endpoints the scheduler calls.
func CronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderCronSecret)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("unauthorized"), errorx.Authn), -1)
				return nil
			}
			return next(c)
		}
	}
}
