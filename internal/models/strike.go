package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Strike struct {
	bun.BaseModel `bun:"table:strike,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatorID int64     `bun:"creator_id,notnull" json:"creator_id"`
	MatchID   int64     `bun:"match_id,notnull,unique" json:"match_id"`
	Reason    string    `bun:"reason" json:"reason"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
