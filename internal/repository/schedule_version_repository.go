package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// ScheduleVersionRepository persists append-only draft schedules.
type ScheduleVersionRepository struct {
	db *sqlx.DB
}

// NewScheduleVersionRepository constructs the repository.
func NewScheduleVersionRepository(db *sqlx.DB) *ScheduleVersionRepository {
	return &ScheduleVersionRepository{db: db}
}

// ListByDate returns the drafts of a camp day, oldest first, with payloads normalised.
func (r *ScheduleVersionRepository) ListByDate(ctx context.Context, campID, date string) ([]models.ScheduleVersion, error) {
	const query = `SELECT id, camp_id, schedule_date, payload, created_at
FROM schedule_versions WHERE camp_id = $1 AND schedule_date = $2 ORDER BY created_at ASC, id ASC`
	var records []models.ScheduleVersionRecord
	if err := r.db.SelectContext(ctx, &records, query, campID, date); err != nil {
		return nil, fmt.Errorf("list schedule versions: %w", err)
	}
	versions := make([]models.ScheduleVersion, 0, len(records))
	for _, record := range records {
		payload, ok := NormalizeVersionPayload(record.Payload)
		versions = append(versions, models.ScheduleVersion{
			ID:         record.ID,
			CampID:     record.CampID,
			Date:       record.ScheduleDate,
			CreatedAt:  record.CreatedAt,
			Payload:    payload,
			Recognized: ok,
		})
	}
	return versions, nil
}

// Create appends a draft. Payload is stored as received.
func (r *ScheduleVersionRepository) Create(ctx context.Context, record *models.ScheduleVersionRecord) error {
	if record == nil {
		return fmt.Errorf("schedule version payload is nil")
	}
	if record.CampID == "" || record.ScheduleDate == "" {
		return fmt.Errorf("camp_id and schedule_date are required")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if len(record.Payload) == 0 {
		record.Payload = types.JSONText(`{}`)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_versions (id, camp_id, schedule_date, payload, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.CampID, record.ScheduleDate, record.Payload, record.CreatedAt); err != nil {
		return fmt.Errorf("insert schedule version: %w", err)
	}
	return nil
}
