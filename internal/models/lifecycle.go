package models

import "time"

type LifecyclePass string

const (
	PassReminder     LifecyclePass = "reminder"
	PassVerification LifecyclePass = "verification"
	PassOverdue      LifecyclePass = "overdue"
)

// ReminderCandidate is a DUE deliverable close to its deadline with no reminder sent yet.
type ReminderCandidate struct {
	DeliverableID int64     `bun:"deliverable_id"`
	MatchID       int64     `bun:"match_id"`
	DueAt         time.Time `bun:"due_at"`
	OfferTitle    string    `bun:"offer_title"`
	CampaignCode  string    `bun:"campaign_code"`
	CreatorName   string    `bun:"creator_name"`
	CreatorEmail  string    `bun:"creator_email"`
	CreatorChatID *int64    `bun:"creator_chat_id"`
}

func (c ReminderCandidate) Contact() Contact {
	return Contact{Name: c.CreatorName, Email: c.CreatorEmail, TelegramChatID: c.CreatorChatID}
}

// VerificationCandidate joins a DUE deliverable with the creator's account on one platform.
type VerificationCandidate struct {
	DeliverableID  int64           `bun:"deliverable_id"`
	MatchID        int64           `bun:"match_id"`
	ExpectedType   DeliverableType `bun:"expected_type"`
	CampaignCode   string          `bun:"campaign_code"`
	AcceptedAt     time.Time       `bun:"accepted_at"`
	OfferMetadata  OfferMetadata   `bun:"offer_metadata,type:jsonb"`
	BrandInstagram string          `bun:"brand_instagram"`
	BrandTikTok    string          `bun:"brand_tiktok"`
	AccountID      int64           `bun:"account_id"`
	Platform       Platform        `bun:"platform"`
	ExternalUserID string          `bun:"external_user_id"`
	Handle         string          `bun:"handle"`
	AccessToken    string          `bun:"access_token"`
	TokenExpiresAt *time.Time      `bun:"token_expires_at"`
}

// BrandMention is the handle a post must mention, empty when none is configured.
func (c VerificationCandidate) BrandMention() string {
	if c.OfferMetadata.BrandHandle != "" {
		return c.OfferMetadata.BrandHandle
	}
	switch c.Platform {
	case PlatformInstagram:
		return c.BrandInstagram
	case PlatformTikTok:
		return c.BrandTikTok
	}
	return ""
}

func (c VerificationCandidate) SocialAccount() SocialAccount {
	return SocialAccount{
		ID:             c.AccountID,
		Platform:       c.Platform,
		ExternalUserID: c.ExternalUserID,
		Handle:         c.Handle,
		AccessToken:    c.AccessToken,
		TokenExpiresAt: c.TokenExpiresAt,
	}
}

// OverdueCandidate is a DUE deliverable past its deadline.
type OverdueCandidate struct {
	DeliverableID int64     `bun:"deliverable_id"`
	MatchID       int64     `bun:"match_id"`
	CreatorID     int64     `bun:"creator_id"`
	DueAt         time.Time `bun:"due_at"`
	OfferTitle    string    `bun:"offer_title"`
	CreatorName   string    `bun:"creator_name"`
	CreatorEmail  string    `bun:"creator_email"`
	CreatorChatID *int64    `bun:"creator_chat_id"`
}

func (c OverdueCandidate) Contact() Contact {
	return Contact{Name: c.CreatorName, Email: c.CreatorEmail, TelegramChatID: c.CreatorChatID}
}

type LifecycleRowResult struct {
	Pass          LifecyclePass `json:"pass" msgpack:"pass"`
	Platform      Platform      `json:"platform,omitempty" msgpack:"platform"`
	DeliverableID int64         `json:"deliverable_id" msgpack:"deliverable_id"`
	OK            bool          `json:"ok" msgpack:"ok"`
	Verified      bool          `json:"verified,omitempty" msgpack:"verified"`
	StrikeIssued  bool          `json:"strike_issued,omitempty" msgpack:"strike_issued"`
	Note          string        `json:"note,omitempty" msgpack:"note"`
}

type LifecycleReport struct {
	StartedAt     time.Time            `json:"started_at" msgpack:"started_at"`
	FinishedAt    time.Time            `json:"finished_at" msgpack:"finished_at"`
	Candidates    int                  `json:"candidates" msgpack:"candidates"`
	Processed     int                  `json:"processed" msgpack:"processed"`
	Reminded      int                  `json:"reminded" msgpack:"reminded"`
	Verified      int                  `json:"verified" msgpack:"verified"`
	Failed        int                  `json:"failed" msgpack:"failed"`
	StrikesIssued int                  `json:"strikes_issued" msgpack:"strikes_issued"`
	Results       []LifecycleRowResult `json:"results" msgpack:"results"`
}

func (r *LifecycleReport) Add(result LifecycleRowResult) {
	r.Processed++
	r.Results = append(r.Results, result)
}
