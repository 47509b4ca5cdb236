package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MatchStatus string

const (
	MatchStatusPendingApproval MatchStatus = "PENDING_APPROVAL"
	MatchStatusAccepted        MatchStatus = "ACCEPTED"
	MatchStatusRevoked         MatchStatus = "REVOKED"
	MatchStatusCanceled        MatchStatus = "CANCELED"
	MatchStatusClaimed         MatchStatus = "CLAIMED"
)

// NonTerminalMatchStatuses count against offer capacity and block a second claim.
var NonTerminalMatchStatuses = []MatchStatus{
	MatchStatusPendingApproval,
	MatchStatusAccepted,
	MatchStatusClaimed,
}

func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusRevoked || s == MatchStatusCanceled
}

type Match struct {
	bun.BaseModel `bun:"table:offer_match,alias:m"`

	ID           int64       `bun:"id,pk,autoincrement" json:"id"`
	OfferID      int64       `bun:"offer_id,notnull" json:"offer_id"`
	CreatorID    int64       `bun:"creator_id,notnull" json:"creator_id"`
	Status       MatchStatus `bun:"status,notnull" json:"status"`
	CampaignCode string      `bun:"campaign_code,notnull,unique" json:"campaign_code"`
	AcceptedAt   *time.Time  `bun:"accepted_at" json:"accepted_at"`
	CreatedAt    time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type CampaignCode struct {
	bun.BaseModel `bun:"table:campaign_code"`

	Code      string    `bun:"code,pk" json:"code"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// OfferRejection is written when a brand declines a creator. It blocks future claims.
type OfferRejection struct {
	bun.BaseModel `bun:"table:offer_rejection"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	OfferID   int64     `bun:"offer_id,notnull" json:"offer_id"`
	CreatorID int64     `bun:"creator_id,notnull" json:"creator_id"`
	Reason    string    `bun:"reason" json:"reason"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
