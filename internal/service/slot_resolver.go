package service

import (
	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// EntryMatch identifies which lookup strategy located an entry.
type EntryMatch string

const (
	MatchDivisionSlot  EntryMatch = "division_slot"
	MatchSlotIndex     EntryMatch = "slot_index"
	MatchOverrideStart EntryMatch = "override_start"
	MatchLegacyGrid    EntryMatch = "legacy_grid"
)

// EntryLocation is the owning entry for a time range query.
type EntryLocation struct {
	Entry     *models.Entry `json:"entry"`
	SlotIndex int           `json:"slotIndex"`
	Match     EntryMatch    `json:"match"`
}

// SlotResolver maps bunk/time-range queries onto grid slots using each bunk's own
// division grid. It is built from an immutable day snapshot and is safe for concurrent reads.
type SlotResolver struct {
	divisions   []models.Division
	grid        models.DayGrid
	assignments models.ScheduleAssignment
	bunkIndex   map[string]string
}

// NewSlotResolver indexes division membership for the snapshot.
func NewSlotResolver(divisions []models.Division, grid models.DayGrid, assignments models.ScheduleAssignment) *SlotResolver {
	index := make(map[string]string)
	for _, div := range divisions {
		for _, bunk := range div.Bunks {
			key := models.NormalizeBunkID(bunk)
			if _, taken := index[key]; !taken {
				index[key] = div.Name
			}
		}
	}
	return &SlotResolver{divisions: divisions, grid: grid, assignments: assignments, bunkIndex: index}
}

// ResolveDivision returns the division owning the bunk.
func (r *SlotResolver) ResolveDivision(bunkID string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.bunkIndex[models.NormalizeBunkID(bunkID)]
	return name, ok
}

// GridForBunk returns the bunk's division grid, or the unified grid when the bunk
// has no division.
func (r *SlotResolver) GridForBunk(bunkID string) models.DivisionTimeGrid {
	if division, ok := r.ResolveDivision(bunkID); ok {
		return r.grid.ForDivision(division)
	}
	return r.grid.Unified
}

// FindEntry locates the entry owning [startMin, endMin) for a bunk. Strategies are
// tried in order: division slot start, slot index correspondence (skipping
// continuations), the entry's own start override, then the unified legacy grid.
func (r *SlotResolver) FindEntry(bunkID string, startMin, endMin int) (EntryLocation, bool) {
	if r == nil || endMin <= startMin {
		return EntryLocation{}, false
	}
	entries, ok := r.assignments.Lookup(bunkID)
	if !ok || len(entries) == 0 {
		return EntryLocation{}, false
	}
	var divisionGrid models.DivisionTimeGrid
	if division, ok := r.ResolveDivision(bunkID); ok {
		divisionGrid = r.grid.Divisions[division]
	}
	return findEntry(entries, divisionGrid, r.grid.Unified, startMin, endMin)
}

// FindSlotsForRange returns every slot index overlapping [startMin, endMin) in the
// grid of the named division, or of the bunk's division when a bunk id is given.
func (r *SlotResolver) FindSlotsForRange(startMin, endMin int, divisionOrBunk string) []int {
	if r == nil {
		return nil
	}
	grid := r.gridFor(divisionOrBunk)
	return SlotsForRange(grid, startMin, endMin)
}

func (r *SlotResolver) gridFor(divisionOrBunk string) models.DivisionTimeGrid {
	for _, div := range r.divisions {
		if div.Name == divisionOrBunk {
			return r.grid.ForDivision(div.Name)
		}
	}
	return r.GridForBunk(divisionOrBunk)
}

// SlotsForRange applies the half-open overlap test to every slot of a grid.
func SlotsForRange(grid models.DivisionTimeGrid, startMin, endMin int) []int {
	indices := make([]int, 0)
	for i, slot := range grid {
		if slot.Overlaps(startMin, endMin) {
			indices = append(indices, i)
		}
	}
	return indices
}

func findEntry(entries []*models.Entry, divisionGrid, legacyGrid models.DivisionTimeGrid, startMin, endMin int) (EntryLocation, bool) {
	// 1. division grid slot starting inside the range
	for i, slot := range divisionGrid {
		if !slot.StartsWithin(startMin, endMin) {
			continue
		}
		if entry := entryAt(entries, i); entry != nil && !entry.Continuation {
			return EntryLocation{Entry: entry, SlotIndex: i, Match: MatchDivisionSlot}, true
		}
		break
	}

	// 2. index correspondence over overlapping slots, walking back over continuations
	for _, i := range SlotsForRange(divisionGrid, startMin, endMin) {
		entry := entryAt(entries, i)
		if entry == nil {
			continue
		}
		if !entry.Continuation {
			return EntryLocation{Entry: entry, SlotIndex: i, Match: MatchSlotIndex}, true
		}
		if owner := owningIndex(entries, i); owner >= 0 {
			return EntryLocation{Entry: entries[owner], SlotIndex: owner, Match: MatchSlotIndex}, true
		}
	}

	// 3. entry carries its own start
	for i, entry := range entries {
		if entry == nil || entry.Continuation || entry.OverrideStartMin == nil {
			continue
		}
		if start := *entry.OverrideStartMin; start >= startMin && start < endMin {
			return EntryLocation{Entry: entry, SlotIndex: i, Match: MatchOverrideStart}, true
		}
	}

	// 4. legacy data aligned to the unified grid
	for i, slot := range legacyGrid {
		if !slot.StartsWithin(startMin, endMin) {
			continue
		}
		if entry := entryAt(entries, i); entry != nil {
			if entry.Continuation {
				if owner := owningIndex(entries, i); owner >= 0 {
					return EntryLocation{Entry: entries[owner], SlotIndex: owner, Match: MatchLegacyGrid}, true
				}
				continue
			}
			return EntryLocation{Entry: entry, SlotIndex: i, Match: MatchLegacyGrid}, true
		}
	}
	return EntryLocation{}, false
}

func entryAt(entries []*models.Entry, i int) *models.Entry {
	if i < 0 || i >= len(entries) {
		return nil
	}
	return entries[i]
}

// owningIndex walks back from a continuation to the first slot of the activity.
func owningIndex(entries []*models.Entry, i int) int {
	for j := i - 1; j >= 0; j-- {
		entry := entries[j]
		if entry == nil {
			return -1
		}
		if !entry.Continuation {
			return j
		}
	}
	return -1
}
