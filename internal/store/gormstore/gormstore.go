// Package gormstore persists engine state in Postgres through a single
// namespaced kv table.
package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pricebet/internal/market"
	"pricebet/internal/models"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, key market.DataKey) ([]byte, bool, error) {
	var rec models.KVRecord
	err := s.DB.WithContext(ctx).
		Where("namespace = ? AND record_key = ?", key.Namespace(), key.ID()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(rec.Value), true, nil
}

// Apply runs the whole batch in one database transaction so a failed
// mutation rolls back everything before it.
func (s *Store) Apply(ctx context.Context, muts []market.Mutation) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, m := range muts {
			if m.Delete {
				err := tx.Where("namespace = ? AND record_key = ?", m.Key.Namespace(), m.Key.ID()).
					Delete(&models.KVRecord{}).Error
				if err != nil {
					return err
				}
				continue
			}
			rec := models.KVRecord{
				Namespace: m.Key.Namespace(),
				RecordKey: m.Key.ID(),
				Value:     datatypes.JSON(m.Value),
				UpdatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "namespace"}, {Name: "record_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
