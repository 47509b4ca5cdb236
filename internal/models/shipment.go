package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ShipmentStatus string

const ShipmentStatusPending ShipmentStatus = "PENDING"

// ManualShipment is created for offers that ship goods without a linked product catalogue.
type ManualShipment struct {
	bun.BaseModel `bun:"table:manual_shipment"`

	ID            int64          `bun:"id,pk,autoincrement" json:"id"`
	MatchID       int64          `bun:"match_id,notnull,unique" json:"match_id"`
	RecipientName string         `bun:"recipient_name" json:"recipient_name"`
	AddressLine1  string         `bun:"address_line1" json:"address_line1"`
	City          string         `bun:"city" json:"city"`
	PostalCode    string         `bun:"postal_code" json:"postal_code"`
	Country       string         `bun:"country" json:"country"`
	Status        ShipmentStatus `bun:"status,notnull" json:"status"`
	CreatedAt     time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
