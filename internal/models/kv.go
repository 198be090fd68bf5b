package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord is one engine state record. Namespace and RecordKey together
// mirror the engine's key space; singleton namespaces use "-" as the key.
type KVRecord struct {
	Namespace string         `gorm:"primaryKey;type:text"`
	RecordKey string         `gorm:"primaryKey;type:text;column:record_key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null"`
}

func (KVRecord) TableName() string {
	return "engine_kv_records"
}
