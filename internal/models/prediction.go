package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PredictionEvent records how one submission ended. Field values and
// messages are patient data and are never stored.
type PredictionEvent struct {
	ID        uuid.UUID   `json:"id"`
	FormID    string      `json:"form_id"`
	Kind      OutcomeKind `json:"kind"`
	Tone      Tone        `json:"tone"`
	LatencyMS int64       `json:"latency_ms"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewPredictionEvent builds the event for a rendered banner.
func NewPredictionEvent(formID string, outcome Outcome, banner Banner, latency time.Duration) *PredictionEvent {
	kind := KindTransportError
	if outcome != nil {
		kind = outcome.Kind()
	}
	return &PredictionEvent{
		ID:        uuid.New(),
		FormID:    formID,
		Kind:      kind,
		Tone:      banner.Tone,
		LatencyMS: latency.Milliseconds(),
	}
}

type HistoryService struct {
	pool *pgxpool.Pool
}

func NewHistoryService(pool *pgxpool.Pool) *HistoryService {
	return &HistoryService{pool: pool}
}

// Record inserts the event and fills in CreatedAt.
func (s *HistoryService) Record(ctx context.Context, event *PredictionEvent) error {
	query := `
		INSERT INTO prediction_events (id, form_id, kind, tone, latency_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx, query,
		event.ID,
		event.FormID,
		event.Kind,
		event.Tone,
		event.LatencyMS,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record prediction event: %w", err)
	}

	return nil
}

// CountByTone returns counts of recorded events grouped by tone.
func (s *HistoryService) CountByTone(ctx context.Context) (map[Tone]int, error) {
	query := `
		SELECT tone, COUNT(*)
		FROM prediction_events
		GROUP BY tone
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count prediction events by tone: %w", err)
	}
	defer rows.Close()

	counts := make(map[Tone]int)
	for rows.Next() {
		var tone Tone
		var count int
		if err := rows.Scan(&tone, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tone count: %w", err)
		}
		counts[tone] = count
	}

	return counts, rows.Err()
}

// Recent returns the latest events for a form, newest first.
func (s *HistoryService) Recent(ctx context.Context, formID string, limit int) ([]*PredictionEvent, error) {
	query := `
		SELECT id, form_id, kind, tone, latency_ms, created_at
		FROM prediction_events
		WHERE form_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, formID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction events: %w", err)
	}
	defer rows.Close()

	var events []*PredictionEvent
	for rows.Next() {
		e := &PredictionEvent{}
		if err := rows.Scan(&e.ID, &e.FormID, &e.Kind, &e.Tone, &e.LatencyMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
