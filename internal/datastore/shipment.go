package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"barterhub/internal/models"
)

func CreateTableManualShipment(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ManualShipment)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

type ShipmentStore struct {
	db *bun.DB
}

func NewShipmentStore(db *bun.DB) *ShipmentStore {
	return &ShipmentStore{db}
}

// InsertManualShipment is idempotent per match so a replayed fulfillment does not ship twice.
func (s *ShipmentStore) InsertManualShipment(ctx context.Context, shipment *models.ManualShipment) (bool, error) {
	res, err := s.db.NewInsert().Model(shipment).On("CONFLICT (match_id) DO NOTHING").Exec(ctx)
	return applied(res, err)
}
