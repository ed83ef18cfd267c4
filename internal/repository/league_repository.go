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

// LeagueRepository stores per-division league matchup tables for a camp day.
type LeagueRepository struct {
	db *sqlx.DB
}

// NewLeagueRepository constructs the repository.
func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetByDivision returns the division's matchup table. A day without league play
// yields an empty table.
func (r *LeagueRepository) GetByDivision(ctx context.Context, campID, date, division string) (models.LeagueTable, error) {
	const query = `SELECT slots FROM league_assignments WHERE camp_id = $1 AND schedule_date = $2 AND division = $3`
	var raw types.JSONText
	if err := r.db.GetContext(ctx, &raw, query, campID, date, division); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LeagueTable{}, nil
		}
		return nil, fmt.Errorf("get league assignments: %w", err)
	}
	slots, ok := decodeObject(raw, 0)
	if !ok {
		return models.LeagueTable{}, nil
	}
	return decodeLeagueTable(slots), nil
}

// Publish upserts the division's matchup table.
func (r *LeagueRepository) Publish(ctx context.Context, exec sqlx.ExtContext, campID, date, division string, table models.LeagueTable) error {
	if table == nil {
		table = models.LeagueTable{}
	}
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshal league assignments: %w", err)
	}
	const query = `INSERT INTO league_assignments (camp_id, schedule_date, division, slots, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (camp_id, schedule_date, division)
DO UPDATE SET slots = EXCLUDED.slots, updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, campID, date, division, types.JSONText(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("publish league assignments: %w", err)
	}
	return nil
}
