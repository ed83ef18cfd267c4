package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// DivisionRepository reads camp division configuration.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository constructs the repository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

type divisionRow struct {
	Name      string         `db:"name"`
	Color     sql.NullString `db:"color"`
	Bunks     []byte         `db:"bunks"`
	StartTime sql.NullString `db:"start_time"`
	EndTime   sql.NullString `db:"end_time"`
}

// List returns the divisions of a camp in display order.
func (r *DivisionRepository) List(ctx context.Context, campID string) ([]models.Division, error) {
	const query = `SELECT name, color, bunks, start_time, end_time FROM divisions WHERE camp_id = $1 ORDER BY sort_order ASC, name ASC`
	var rows []divisionRow
	if err := r.db.SelectContext(ctx, &rows, query, campID); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	divisions := make([]models.Division, 0, len(rows))
	for _, row := range rows {
		var bunks models.BunkList
		if len(row.Bunks) > 0 {
			if err := json.Unmarshal(row.Bunks, &bunks); err != nil {
				return nil, fmt.Errorf("decode bunks of division %s: %w", row.Name, err)
			}
		}
		divisions = append(divisions, models.Division{
			Name:      row.Name,
			Color:     row.Color.String,
			Bunks:     bunks,
			StartTime: row.StartTime.String,
			EndTime:   row.EndTime.String,
		})
	}
	return divisions, nil
}
