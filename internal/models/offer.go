package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OfferStatus string

const (
	OfferStatusDraft     OfferStatus = "DRAFT"
	OfferStatusPublished OfferStatus = "PUBLISHED"
	OfferStatusArchived  OfferStatus = "ARCHIVED"
)

type DeliverableType string

const (
	DeliverableTypeReels   DeliverableType = "REELS"
	DeliverableTypeFeed    DeliverableType = "FEED"
	DeliverableTypeUGCOnly DeliverableType = "UGC_ONLY"
)

type FulfillmentType string

const (
	FulfillmentTypeShipping FulfillmentType = "SHIPPING"
	FulfillmentTypePickup   FulfillmentType = "PICKUP"
	FulfillmentTypeDigital  FulfillmentType = "DIGITAL"
)

type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTikTok    Platform = "TIKTOK"
)

// SupportedPlatforms is also the order in which readiness is reported.
var SupportedPlatforms = []Platform{PlatformInstagram, PlatformTikTok}

type OfferMetadata struct {
	Platforms        []Platform      `json:"platforms,omitempty"`
	LocationRadiusKm *float64        `json:"location_radius_km,omitempty"`
	FulfillmentType  FulfillmentType `json:"fulfillment_type,omitempty"`
	ProductIDs       []string        `json:"product_ids,omitempty"`
	DiscountPercent  int             `json:"discount_percent,omitempty"`
	BrandHandle      string          `json:"brand_handle,omitempty"`
	ShareURL         string          `json:"share_url,omitempty"`
}

// AllowedPlatforms treats an empty list as every supported platform.
func (m OfferMetadata) AllowedPlatforms() []Platform {
	if len(m.Platforms) == 0 {
		return SupportedPlatforms
	}
	return m.Platforms
}

func (m OfferMetadata) AllowsPlatform(platform Platform) bool {
	for _, p := range m.AllowedPlatforms() {
		if p == platform {
			return true
		}
	}
	return false
}

func (m OfferMetadata) RequiresAddress() bool {
	return m.FulfillmentType == FulfillmentTypeShipping
}

type Offer struct {
	bun.BaseModel `bun:"table:offer,alias:o"`

	ID                           int64           `bun:"id,pk,autoincrement" json:"id"`
	BrandID                      int64           `bun:"brand_id,notnull" json:"brand_id"`
	Title                        string          `bun:"title" json:"title"`
	Status                       OfferStatus     `bun:"status,notnull,default:'DRAFT'" json:"status"`
	CountriesAllowed             []string        `bun:"countries_allowed,type:jsonb" json:"countries_allowed"`
	MaxClaims                    int             `bun:"max_claims,notnull" json:"max_claims"`
	DeadlineDaysAfterDelivery    int             `bun:"deadline_days_after_delivery,notnull" json:"deadline_days_after_delivery"`
	DeliverableType              DeliverableType `bun:"deliverable_type,notnull" json:"deliverable_type"`
	AcceptanceFollowersThreshold int             `bun:"acceptance_followers_threshold" json:"acceptance_followers_threshold"`
	AboveThresholdAutoAccept     bool            `bun:"above_threshold_auto_accept" json:"above_threshold_auto_accept"`
	Metadata                     OfferMetadata   `bun:"metadata,type:jsonb" json:"metadata"`
	PublishedAt                  *time.Time      `bun:"published_at" json:"published_at"`
	ArchivedAt                   *time.Time      `bun:"archived_at" json:"archived_at"`
	CreatedAt                    time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Brand *Brand `bun:"rel:belongs-to,join:brand_id=id" json:"brand,omitempty"`
}

func (o *Offer) AllowsCountry(country string) bool {
	if len(o.CountriesAllowed) == 0 {
		return true
	}
	for _, c := range o.CountriesAllowed {
		if c == country {
			return true
		}
	}
	return false
}
