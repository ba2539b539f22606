package domain

import (
	"time"
)

// KVEntry one key of the key-value primitive when it is backed by a SQL database
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (KVEntry) TableName() string {
	return "kv_entries"
}
