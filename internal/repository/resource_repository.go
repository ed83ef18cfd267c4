package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// ResourceRepository reads resource sharing configuration.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type resourceRow struct {
	Name      string         `db:"name"`
	Sharing   types.JSONText `db:"sharing"`
	Available bool           `db:"available"`
}

// ListProperties returns the camp's resources keyed by name.
func (r *ResourceRepository) ListProperties(ctx context.Context, campID string) (models.ResourceProperties, error) {
	const query = `SELECT name, sharing, available FROM camp_resources WHERE camp_id = $1 ORDER BY name ASC`
	var rows []resourceRow
	if err := r.db.SelectContext(ctx, &rows, query, campID); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	props := make(models.ResourceProperties, len(rows))
	for _, row := range rows {
		props[row.Name] = models.Resource{
			Name:      row.Name,
			Sharing:   NormalizeSharingPolicy(row.Sharing),
			Available: row.Available,
		}
	}
	return props, nil
}

// NormalizeSharingPolicy decodes a stored sharing policy. Unknown or malformed
// policies become not-shareable.
func NormalizeSharingPolicy(raw []byte) models.SharingPolicy {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return models.SharingPolicy{Type: models.SharingNotShareable}
	}
	policy := models.SharingPolicy{
		Type:               sharingType(firstString(obj, "type")),
		AllowCrossDivision: firstBool(obj, "allowCrossDivision", "crossDivision"),
	}
	if capacity, ok := firstInt(obj, "capacity"); ok {
		policy.Capacity = capacity
	} else if n, err := strconv.Atoi(firstString(obj, "capacity")); err == nil {
		policy.Capacity = n
	}
	return policy
}

func sharingType(raw string) models.SharingType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all", "unrestricted", "unlimited":
		return models.SharingUnrestricted
	case "custom":
		return models.SharingCustom
	default:
		return models.SharingNotShareable
	}
}
