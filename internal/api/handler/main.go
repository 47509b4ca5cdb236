package handler

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"

	"barterhub/internal/api"
	"barterhub/internal/models"
	"barterhub/internal/services"
)

type Config struct {
	Container      *do.Injector
	Mode           string
	Origins        []string
	TrustedProxies []string
	CronSecret     string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	ipExtractor, err := clientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	r.IPExtractor = ipExtractor

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Validator = api.NewRequestValidator()
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🤝")
	})

	l := groupLink{cfg.Container}
	r.GET(services.SHARE_PATH_PREFIX+":code", l.Share)

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)

		routesAPIv1Internal := routesAPIv1.Group("/internal")
		{
			routesAPIv1Internal.Use(CronSecret(cfg.CronSecret))
			lc := groupLifecycle{cfg.Container}
			routesAPIv1Internal.POST("/lifecycle/run", lc.Run)
			routesAPIv1Internal.GET("/lifecycle/last", lc.Last)
			routesAPIv1Internal.GET("/lifecycle/history", lc.History)
		}

		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		o := groupOffer{cfg.Container}
		m := groupMatch{cfg.Container}
		d := groupDeliverable{cfg.Container}

		creatorOnly := RequireRole(models.RoleCreator)
		routesAPIv1.POST("/offers/:id/claim", o.Claim, creatorOnly)
		routesAPIv1.POST("/matches/:id/cancel", m.Cancel, creatorOnly)
		routesAPIv1.POST("/deliverables/:id/submit", d.Submit, creatorOnly)
		routesAPIv1.GET("/me/strikes", d.MyStrikes, creatorOnly)

		routesAPIv1Brand := routesAPIv1.Group("/brand")
		{
			routesAPIv1Brand.Use(RequireRole(models.RoleBrand))
			routesAPIv1Brand.POST("/matches/:id/approve", m.Approve)
			routesAPIv1Brand.POST("/matches/:id/decline", m.Decline)
			routesAPIv1Brand.POST("/offers/:id/publish", o.Publish)
			routesAPIv1Brand.POST("/offers/:id/archive", o.Archive)
			routesAPIv1Brand.POST("/deliverables/:id/verify", d.Verify)
		}
	}

	return r, nil
}

// clientIPExtractor only reads X-Forwarded-For when the peer is one of the listed proxies.
func clientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	if len(options) == 3 {
		return echo.ExtractIPDirect(), nil
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
