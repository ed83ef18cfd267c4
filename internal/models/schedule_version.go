package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DateLayout is the canonical form of a schedule date.
const DateLayout = "2006-01-02"

// ScheduleVersionRecord is one saved draft as stored. Payload shape varies across
// editor releases and is normalised by the repository before the core sees it.
type ScheduleVersionRecord struct {
	ID           string         `db:"id" json:"id"`
	CampID       string         `db:"camp_id" json:"camp_id"`
	ScheduleDate string         `db:"schedule_date" json:"schedule_date"`
	Payload      types.JSONText `db:"payload" json:"payload"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// VersionPayload is the canonical content of a draft.
type VersionPayload struct {
	Skeleton          []SkeletonBlock    `json:"skeleton,omitempty"`
	Assignments       ScheduleAssignment `json:"assignments"`
	LeagueAssignments LeagueAssignments  `json:"leagueAssignments,omitempty"`
}

// ScheduleVersion is a normalised draft. Recognized is false when no schedule
// payload field could be located; such versions are skipped by the merger.
type ScheduleVersion struct {
	ID         string
	CampID     string
	Date       string
	CreatedAt  time.Time
	Payload    VersionPayload
	Recognized bool
}
