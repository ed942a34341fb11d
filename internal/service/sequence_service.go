package service

import (
	"context"
	"fmt"
	"time"

	"compras-backend/internal/repository"
)

// SequenceService produces the human-readable, period-scoped document numbers
// (e.g. "OC-2025-03-001"). Numbers restart at 1 each month and are gapless
// within a month.
type SequenceService interface {
	// NextNumber atomically issues the next number for the type and period
	// derived from now.
	NextNumber(ctx context.Context, seqType string, now time.Time) (string, error)

	// PreviewNumber computes the number the next call to NextNumber would
	// return, without incrementing. Used for UI display only; the previewed
	// value is not reserved.
	PreviewNumber(ctx context.Context, seqType string, now time.Time) (string, error)
}

type sequenceService struct {
	sequences repository.SequenceRepository
}

func NewSequenceService(sequences repository.SequenceRepository) SequenceService {
	return &sequenceService{sequences: sequences}
}

// period is the "YYYY-MM" scope for the counter.
func period(now time.Time) string {
	return now.Format("2006-01")
}

func formatNumber(seqType, period string, counter int64) string {
	return fmt.Sprintf("%s-%s-%03d", seqType, period, counter)
}

func (s *sequenceService) NextNumber(ctx context.Context, seqType string, now time.Time) (string, error) {
	p := period(now)
	counter, err := s.sequences.Next(ctx, seqType, p)
	if err != nil {
		return "", err
	}
	return formatNumber(seqType, p, counter), nil
}

func (s *sequenceService) PreviewNumber(ctx context.Context, seqType string, now time.Time) (string, error) {
	p := period(now)
	counter, err := s.sequences.Current(ctx, seqType, p)
	if err != nil {
		return "", err
	}
	return formatNumber(seqType, p, counter+1), nil
}
