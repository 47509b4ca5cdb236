package eligibility

import (
	"fmt"
	"time"

	"barterhub/internal/models"
)

type ReadinessState string

const (
	ReadinessReady        ReadinessState = "READY"
	ReadinessNotConnected ReadinessState = "NOT_CONNECTED"
	ReadinessExpired      ReadinessState = "EXPIRED"
	ReadinessNeedsSync    ReadinessState = "NEEDS_SYNC"
)

// rank orders non-ready states by how close the creator is to being ready.
func (s ReadinessState) rank() int {
	switch s {
	case ReadinessReady:
		return 3
	case ReadinessNeedsSync:
		return 2
	case ReadinessExpired:
		return 1
	}
	return 0
}

// Readiness is the per-platform connection verdict consumed by Evaluate.
type Readiness struct {
	Platform models.Platform
	State    ReadinessState
}

func (r Readiness) Ready() bool {
	return r.State == ReadinessReady
}

// Code is the claim rejection code asking the creator to fix this platform.
func (r Readiness) Code() Code {
	var action string
	switch r.State {
	case ReadinessNotConnected:
		action = "CONNECT"
	case ReadinessExpired:
		action = "RECONNECT"
	case ReadinessNeedsSync:
		action = "SYNC"
	default:
		return ""
	}
	return Code(fmt.Sprintf("NEEDS_%s_%s", r.Platform, action))
}

// ResolveReadiness inspects the creator's account for platform. A nil account is not connected.
func ResolveReadiness(platform models.Platform, account *models.SocialAccount, policy Policy, now time.Time) Readiness {
	r := Readiness{Platform: platform, State: ReadinessNotConnected}
	if account == nil || account.AccessToken == "" {
		return r
	}
	if account.TokenExpired(now) {
		r.State = ReadinessExpired
		return r
	}

	if platform == models.PlatformInstagram {
		if account.SyncError != "" || account.LastSyncedAt == nil {
			r.State = ReadinessNeedsSync
			return r
		}
		if now.Sub(*account.LastSyncedAt) > policy.InstagramStaleAfter {
			r.State = ReadinessNeedsSync
			return r
		}
	}

	r.State = ReadinessReady
	return r
}

// ResolveAll returns readiness for every platform the offer allows, in offer order.
func ResolveAll(allowed []models.Platform, accounts []models.SocialAccount, policy Policy, now time.Time) []Readiness {
	byPlatform := make(map[models.Platform]*models.SocialAccount, len(accounts))
	for i := range accounts {
		byPlatform[accounts[i].Platform] = &accounts[i]
	}

	out := make([]Readiness, 0, len(allowed))
	for _, platform := range allowed {
		out = append(out, ResolveReadiness(platform, byPlatform[platform], policy, now))
	}
	return out
}

// best picks a ready platform if any, otherwise the one closest to ready.
func best(readiness []Readiness) (Readiness, bool) {
	var pick Readiness
	found := false
	for _, r := range readiness {
		if r.Ready() {
			return r, true
		}
		if !found || r.State.rank() > pick.State.rank() {
			pick = r
			found = true
		}
	}
	return pick, found
}
