package models

import "strings"

// Entry is one cell of a bunk's schedule. A nil *Entry is an empty slot.
type Entry struct {
	Resource         string `json:"resource,omitempty"`
	Activity         string `json:"activityName,omitempty"`
	Sport            string `json:"sport,omitempty"`
	Continuation     bool   `json:"continuation,omitempty"`
	IsLeague         bool   `json:"isLeague,omitempty"`
	HasMatchups      bool   `json:"hasMatchups,omitempty"`
	OverrideStartMin *int   `json:"overrideStartMin,omitempty"`
}

// ActivityName prefers the explicit activity, then the sport.
func (e *Entry) ActivityName() string {
	if e == nil {
		return ""
	}
	if name := strings.TrimSpace(e.Activity); name != "" {
		return name
	}
	return strings.TrimSpace(e.Sport)
}

// IsBlank is true when the cell carries no activity, resource or continuation.
func (e *Entry) IsBlank() bool {
	if e == nil {
		return true
	}
	return e.ActivityName() == "" && strings.TrimSpace(e.Resource) == "" && !e.Continuation
}

// RecordsLeague is true for league-flagged cells or cells that carry matchups.
func (e *Entry) RecordsLeague() bool {
	return e != nil && (e.IsLeague || e.HasMatchups)
}

// Clone returns a deep copy.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.OverrideStartMin != nil {
		v := *e.OverrideStartMin
		c.OverrideStartMin = &v
	}
	return &c
}

// ScheduleAssignment maps a bunk id to its entries, aligned to that bunk's division grid.
type ScheduleAssignment map[string][]*Entry

// Clone deep-copies the assignment.
func (a ScheduleAssignment) Clone() ScheduleAssignment {
	if a == nil {
		return nil
	}
	out := make(ScheduleAssignment, len(a))
	for bunk, entries := range a {
		copied := make([]*Entry, len(entries))
		for i, entry := range entries {
			copied[i] = entry.Clone()
		}
		out[bunk] = copied
	}
	return out
}

// Lookup finds a bunk's entries tolerating numeric/string key differences.
func (a ScheduleAssignment) Lookup(bunkID string) ([]*Entry, bool) {
	if entries, ok := a[bunkID]; ok {
		return entries, true
	}
	target := NormalizeBunkID(bunkID)
	for key, entries := range a {
		if NormalizeBunkID(key) == target {
			return entries, true
		}
	}
	return nil, false
}

// HasAssignedSlot reports whether any cell of the sequence is non-blank.
func HasAssignedSlot(entries []*Entry) bool {
	for _, entry := range entries {
		if !entry.IsBlank() {
			return true
		}
	}
	return false
}
