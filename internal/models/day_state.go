package models

import "time"

// DayState is the published, canonical schedule of one camp day. It is replaced
// as a whole after every successful merge and never mutated in place.
type DayState struct {
	CampID            string             `json:"campId"`
	Date              string             `json:"date"`
	Assignments       ScheduleAssignment `json:"assignments"`
	Grid              DayGrid            `json:"grid"`
	LeagueAssignments LeagueAssignments  `json:"leagueAssignments,omitempty"`
	Skeleton          []SkeletonBlock    `json:"skeleton,omitempty"`
	PublishedAt       time.Time          `json:"publishedAt"`
}

// PublishedSchedule is a stored canonical assignment row.
type PublishedSchedule struct {
	CampID       string    `db:"camp_id"`
	ScheduleDate string    `db:"schedule_date"`
	Assignments  []byte    `db:"assignments"`
	Grid         []byte    `db:"time_grid"`
	Skeleton     []byte    `db:"skeleton"`
	UpdatedAt    time.Time `db:"updated_at"`
}
