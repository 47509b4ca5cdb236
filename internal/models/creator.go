package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Creator struct {
	bun.BaseModel `bun:"table:creator,alias:c"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	DisplayName    string    `bun:"display_name" json:"display_name"`
	Email          string    `bun:"email" json:"-"`
	TelegramChatID *int64    `bun:"telegram_chat_id" json:"-"`
	Latitude       *float64  `bun:"latitude" json:"latitude"`
	Longitude      *float64  `bun:"longitude" json:"longitude"`
	Country        string    `bun:"country" json:"country"`
	FollowerCount  *int      `bun:"follower_count" json:"follower_count"`
	AddressLine1   string    `bun:"address_line1" json:"-"`
	City           string    `bun:"city" json:"-"`
	PostalCode     string    `bun:"postal_code" json:"-"`
	AddressCountry string    `bun:"address_country" json:"-"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (c *Creator) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

func (c *Creator) HasCompleteAddress() bool {
	for _, field := range []string{c.AddressLine1, c.City, c.PostalCode, c.AddressCountry} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

func (c *Creator) Contact() Contact {
	return Contact{Name: c.DisplayName, Email: c.Email, TelegramChatID: c.TelegramChatID}
}

type SocialAccount struct {
	bun.BaseModel `bun:"table:social_account,alias:sa"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	CreatorID      int64      `bun:"creator_id,notnull" json:"creator_id"`
	Platform       Platform   `bun:"platform,notnull" json:"platform"`
	ExternalUserID string     `bun:"external_user_id" json:"external_user_id"`
	Handle         string     `bun:"handle" json:"handle"`
	AccessToken    string     `bun:"access_token" json:"-"`
	TokenExpiresAt *time.Time `bun:"token_expires_at" json:"token_expires_at"`
	LastSyncedAt   *time.Time `bun:"last_synced_at" json:"last_synced_at"`
	SyncError      string     `bun:"sync_error" json:"sync_error,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (a *SocialAccount) TokenExpired(now time.Time) bool {
	return a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(now)
}
