package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"barterhub/internal/config"
	"barterhub/internal/datastore"
	"barterhub/internal/pkg/caching"
	"barterhub/internal/pkg/campaigncode"
)

var ErrShareLinkNotFound = errors.New("share link not found")

// ServiceLink resolves /c/:code attribution links to the offer's landing page.
type ServiceLink struct {
	cache   caching.Cache
	baseURL string
	load    func(ctx context.Context, code string) (*datastore.ShareTarget, error)
}

func NewServiceLink(container *do.Injector) (*ServiceLink, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cfg, err := do.Invoke[*config.Env](container)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, code string) (*datastore.ShareTarget, error) {
		return datastore.GetShareTarget(ctx, readonlyPostgresDB, code)
	}
	return &ServiceLink{cache, strings.TrimRight(cfg.PublicBaseURL, "/"), load}, nil
}

// Resolve returns the redirect target for code, tagged with ?ref=<code>.
func (service *ServiceLink) Resolve(ctx context.Context, code string) (string, error) {
	code, ok := campaigncode.Normalize(code)
	if !ok {
		return "", errorx.Wrap(ErrShareLinkNotFound, errorx.NotExist)
	}

	return caching.UseCache(ctx, service.cache, DBKeyShareLink(code), CACHE_TTL_5_MINS, func() (string, error) {
		target, err := service.load(ctx, code)
		if errors.Is(err, sql.ErrNoRows) {
			return "", errorx.Wrap(ErrShareLinkNotFound, errorx.NotExist)
		}
		if err != nil {
			return "", err
		}

		destination := target.Metadata.ShareURL
		if destination == "" {
			destination = fmt.Sprintf("%s/offers/%d", service.baseURL, target.OfferID)
		}
		return withRef(destination, code)
	})
}

func withRef(destination, code string) (string, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
