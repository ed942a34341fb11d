package model

import "time"

// SequenceType tags for document numbering
const (
	SeqTypePurchaseOrder = "OC"
)

// SequenceCounter holds a monotonic counter per (type, period) pair, where
// period is a "YYYY-MM" string. Counters are only ever advanced through an
// atomic upsert-increment so values are strictly increasing and gapless even
// across concurrent server processes.
type SequenceCounter struct {
	Type      string    `gorm:"type:varchar(10);primaryKey" json:"type"`
	Period    string    `gorm:"type:varchar(7);primaryKey" json:"period"`
	Counter   int64     `gorm:"not null;default:0" json:"counter"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
