package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusTrialing SubscriptionStatus = "TRIALING"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

type Brand struct {
	bun.BaseModel `bun:"table:brand,alias:b"`

	ID                 int64              `bun:"id,pk,autoincrement" json:"id"`
	Name               string             `bun:"name,notnull" json:"name"`
	InstagramHandle    string             `bun:"instagram_handle" json:"instagram_handle"`
	TikTokHandle       string             `bun:"tiktok_handle" json:"tiktok_handle"`
	Latitude           *float64           `bun:"latitude" json:"latitude"`
	Longitude          *float64           `bun:"longitude" json:"longitude"`
	SubscriptionStatus SubscriptionStatus `bun:"subscription_status" json:"subscription_status"`
	Email              string             `bun:"email" json:"-"`
	TelegramChatID     *int64             `bun:"telegram_chat_id" json:"-"`
	CreatedAt          time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (b *Brand) HasCoordinates() bool {
	return b != nil && b.Latitude != nil && b.Longitude != nil
}

func (b *Brand) Contact() Contact {
	return Contact{Name: b.Name, Email: b.Email, TelegramChatID: b.TelegramChatID}
}
