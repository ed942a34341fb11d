package repository

import (
	"context"

	"compras-backend/internal/model"

	"gorm.io/gorm"
)

type SequenceRepository interface {
	// Next atomically increments the counter for (seqType, period) and returns
	// the new value. The upsert-increment runs as a single statement so
	// concurrent callers are serialized by the row lock and each gets a
	// distinct, gapless value.
	Next(ctx context.Context, seqType, period string) (int64, error)
	// Current returns the counter without advancing it; 0 if no row exists yet.
	Current(ctx context.Context, seqType, period string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, seqType, period string) (int64, error) {
	var counter int64
	err := GetDB(ctx, r.db).Raw(`
		INSERT INTO sequence_counters (type, period, counter, created_at, updated_at)
		VALUES (?, ?, 1, now(), now())
		ON CONFLICT (type, period)
		DO UPDATE SET counter = sequence_counters.counter + 1, updated_at = now()
		RETURNING counter`, seqType, period).Scan(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter, nil
}

func (r *sequenceRepository) Current(ctx context.Context, seqType, period string) (int64, error) {
	var row model.SequenceCounter
	err := GetDB(ctx, r.db).First(&row, "type = ? AND period = ?", seqType, period).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Counter, nil
}
