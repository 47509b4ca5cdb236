// Package eligibility decides whether a creator may claim an offer right now.
//
// Evaluate is pure: every piece of state it needs, including the clock and the
// rate-limit probe, is passed in through Input.
package eligibility

import (
	"fmt"
	"time"

	"barterhub/internal/models"
	"barterhub/internal/pkg/geo"
)

type Code string

const (
	CodeOfferUnavailable     Code = "OFFER_UNAVAILABLE"
	CodePaywall              Code = "PAYWALL"
	CodeNeedsLocation        Code = "NEEDS_LOCATION"
	CodeOfferRejected        Code = "OFFER_REJECTED"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodeStrikeBlocked        Code = "STRIKE_BLOCKED"
	CodeCountryNotAllowed    Code = "COUNTRY_NOT_ALLOWED"
	CodeNeedsAddress         Code = "NEEDS_ADDRESS"
	CodeOfferLocationMissing Code = "OFFER_LOCATION_MISSING"
	CodeOutOfRange           Code = "OUT_OF_RANGE"
	CodeNotNano              Code = "NOT_NANO"
)

type Policy struct {
	StrikeLimit               int
	MinFollowers              int
	MaxFollowers              int // 0 disables the upper bound
	InstagramStaleAfter       time.Duration
	ClaimsPerCreatorPerMinute int
	ClaimsPerIPPerMinute      int
}

func DefaultPolicy() Policy {
	return Policy{
		StrikeLimit:               3,
		MinFollowers:              1000,
		MaxFollowers:              50000,
		InstagramStaleAfter:       7 * 24 * time.Hour,
		ClaimsPerCreatorPerMinute: 5,
		ClaimsPerIPPerMinute:      20,
	}
}

type RateVerdict int

const (
	RateAllowed RateVerdict = iota
	RateLimited
	// RateUnavailable means the limiter backend failed. The claim proceeds.
	RateUnavailable
)

type Input struct {
	Offer              *models.Offer
	Brand              *models.Brand
	Creator            *models.Creator
	SubscriptionActive bool
	Rejected           bool
	StrikeCount        int
	// RateLimit is only invoked once the earlier gates pass, so rejected requests
	// do not consume limiter tokens.
	RateLimit func() RateVerdict
	Accounts  []models.SocialAccount
	Policy    Policy
	Now       time.Time
}

type Rejection struct {
	Code    Code
	Message string
	Details map[string]any
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func reject(code Code, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}

type Decision struct {
	Rejection  *Rejection
	AutoAccept bool
}

func (d Decision) Eligible() bool {
	return d.Rejection == nil
}

// Evaluate runs the gates in order and stops at the first failure.
func Evaluate(in Input) Decision {
	if r := check(in); r != nil {
		return Decision{Rejection: r}
	}
	return Decision{AutoAccept: ShouldAutoAccept(in.Offer, in.Creator)}
}

func check(in Input) *Rejection {
	offer, creator := in.Offer, in.Creator

	if offer == nil || offer.Status != models.OfferStatusPublished {
		return reject(CodeOfferUnavailable, "this offer is not open for claims")
	}
	if !in.SubscriptionActive {
		return reject(CodePaywall, "this brand's subscription is not active")
	}

	if !creator.HasCoordinates() {
		return reject(CodeNeedsLocation, "set your location before claiming offers")
	}

	if in.Rejected {
		return reject(CodeOfferRejected, "the brand has declined your request for this offer")
	}

	if in.RateLimit != nil && in.RateLimit() == RateLimited {
		return reject(CodeRateLimited, "too many claim attempts, try again in a minute")
	}

	if in.Policy.StrikeLimit > 0 && in.StrikeCount >= in.Policy.StrikeLimit {
		return &Rejection{
			Code:    CodeStrikeBlocked,
			Message: "your account has too many missed deliverables to claim new offers",
			Details: map[string]any{"strikes": in.StrikeCount, "limit": in.Policy.StrikeLimit},
		}
	}

	if creator.Country != "" && !offer.AllowsCountry(creator.Country) {
		return reject(CodeCountryNotAllowed, "this offer is not available in your country")
	}

	if offer.Metadata.RequiresAddress() && !creator.HasCompleteAddress() {
		return reject(CodeNeedsAddress, "add your shipping address before claiming this offer")
	}

	if r := checkDistance(offer, in.Brand, creator); r != nil {
		return r
	}

	if creator.FollowerCount != nil && !withinBand(*creator.FollowerCount, in.Policy) {
		return &Rejection{
			Code:    CodeNotNano,
			Message: "your follower count is outside the range this platform supports",
			Details: map[string]any{
				"followers":     *creator.FollowerCount,
				"min_followers": in.Policy.MinFollowers,
				"max_followers": in.Policy.MaxFollowers,
			},
		}
	}

	if offer.DeliverableType != models.DeliverableTypeUGCOnly {
		readiness := ResolveAll(offer.Metadata.AllowedPlatforms(), in.Accounts, in.Policy, in.Now)
		pick, ok := best(readiness)
		if !ok {
			return reject(CodeOfferUnavailable, "this offer has no supported platforms")
		}
		if !pick.Ready() {
			return &Rejection{
				Code:    pick.Code(),
				Message: fmt.Sprintf("connect a usable %s account to claim this offer", pick.Platform),
				Details: map[string]any{"platform": pick.Platform, "state": pick.State},
			}
		}
	}

	return nil
}

func checkDistance(offer *models.Offer, brand *models.Brand, creator *models.Creator) *Rejection {
	radius := offer.Metadata.LocationRadiusKm
	if radius == nil {
		return nil
	}
	if !brand.HasCoordinates() {
		return reject(CodeOfferLocationMissing, "the brand has not set a location for this offer")
	}

	distance := geo.DistanceKm(
		geo.Point{Lat: *brand.Latitude, Lng: *brand.Longitude},
		geo.Point{Lat: *creator.Latitude, Lng: *creator.Longitude},
	)
	if distance <= *radius {
		return nil
	}

	details := map[string]any{
		"distance_km":    geo.Round1(distance),
		"radius_km":      geo.Round1(*radius),
		"distance_miles": geo.Round1(geo.KmToMiles(distance)),
		"radius_miles":   geo.Round1(geo.KmToMiles(*radius)),
	}
	message := fmt.Sprintf("you are %.1f km (%.1f mi) away, this offer is limited to %.1f km (%.1f mi)",
		details["distance_km"], details["distance_miles"], details["radius_km"], details["radius_miles"])
	return &Rejection{Code: CodeOutOfRange, Message: message, Details: details}
}

func withinBand(followers int, policy Policy) bool {
	if followers < policy.MinFollowers {
		return false
	}
	return policy.MaxFollowers <= 0 || followers <= policy.MaxFollowers
}

// ShouldAutoAccept is true only when the offer opts in and the creator meets its threshold.
func ShouldAutoAccept(offer *models.Offer, creator *models.Creator) bool {
	if !offer.AboveThresholdAutoAccept || creator.FollowerCount == nil {
		return false
	}
	return *creator.FollowerCount >= offer.AcceptanceFollowersThreshold
}
