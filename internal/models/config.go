package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Config rows hold runtime tunables read through ServiceConfig.
type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string    `bun:"key,pk" json:"key"`
	Value         string    `bun:"value" json:"value"`
	Description   string    `bun:"description" json:"description,omitempty"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
