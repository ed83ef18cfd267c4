package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// DailyScheduleRepository stores the canonical, published schedule of a camp day.
type DailyScheduleRepository struct {
	db *sqlx.DB
}

// NewDailyScheduleRepository constructs the repository.
func NewDailyScheduleRepository(db *sqlx.DB) *DailyScheduleRepository {
	return &DailyScheduleRepository{db: db}
}

func (r *DailyScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// PublishAssignments upserts the merged assignments of the day.
func (r *DailyScheduleRepository) PublishAssignments(ctx context.Context, exec sqlx.ExtContext, campID, date string, assignments models.ScheduleAssignment) error {
	if assignments == nil {
		assignments = models.ScheduleAssignment{}
	}
	payload, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("marshal daily assignments: %w", err)
	}
	const query = `INSERT INTO daily_schedules (camp_id, schedule_date, assignments, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (camp_id, schedule_date)
DO UPDATE SET assignments = EXCLUDED.assignments, updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, campID, date, types.JSONText(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("publish daily assignments: %w", err)
	}
	return nil
}

// PublishTimeGrid upserts the regenerated grid of the day together with the
// skeleton it was built from. A nil skeleton is stored as JSON null.
func (r *DailyScheduleRepository) PublishTimeGrid(ctx context.Context, exec sqlx.ExtContext, campID, date string, grid models.DayGrid, skeleton []models.SkeletonBlock) error {
	payload, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("marshal time grid: %w", err)
	}
	blocks, err := json.Marshal(skeleton)
	if err != nil {
		return fmt.Errorf("marshal skeleton: %w", err)
	}
	const query = `INSERT INTO daily_time_grids (camp_id, schedule_date, grid, skeleton, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (camp_id, schedule_date)
DO UPDATE SET grid = EXCLUDED.grid, skeleton = EXCLUDED.skeleton, updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, campID, date, types.JSONText(payload), types.JSONText(blocks), time.Now().UTC()); err != nil {
		return fmt.Errorf("publish time grid: %w", err)
	}
	return nil
}

// GetPublished loads the last published day. It returns sql.ErrNoRows when the
// day was never reconciled.
func (r *DailyScheduleRepository) GetPublished(ctx context.Context, campID, date string) (*models.DayState, error) {
	const query = `SELECT s.camp_id, s.schedule_date, s.assignments, COALESCE(g.grid, '{}') AS time_grid, g.skeleton, s.updated_at
FROM daily_schedules s
LEFT JOIN daily_time_grids g ON g.camp_id = s.camp_id AND g.schedule_date = s.schedule_date
WHERE s.camp_id = $1 AND s.schedule_date = $2`
	var row models.PublishedSchedule
	if err := r.db.GetContext(ctx, &row, query, campID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get published schedule: %w", err)
	}
	state := &models.DayState{
		CampID:      row.CampID,
		Date:        row.ScheduleDate,
		Assignments: models.ScheduleAssignment{},
		PublishedAt: row.UpdatedAt,
	}
	if len(row.Assignments) > 0 {
		if err := json.Unmarshal(row.Assignments, &state.Assignments); err != nil {
			return nil, fmt.Errorf("decode published assignments: %w", err)
		}
	}
	if len(row.Grid) > 0 {
		if err := json.Unmarshal(row.Grid, &state.Grid); err != nil {
			return nil, fmt.Errorf("decode published grid: %w", err)
		}
	}
	if len(row.Skeleton) > 0 {
		if err := json.Unmarshal(row.Skeleton, &state.Skeleton); err != nil {
			return nil, fmt.Errorf("decode published skeleton: %w", err)
		}
	}
	return state, nil
}
