package models

// Minutes-from-midnight bounds used when nothing else constrains a day.
const (
	DefaultDayStartMin = 540
	DefaultDayEndMin   = 960
)

// TimeSlot is one cell of a division grid, in minutes from midnight.
type TimeSlot struct {
	StartMin int    `json:"startMin"`
	EndMin   int    `json:"endMin"`
	Label    string `json:"label"`
}

// Overlaps reports whether the slot intersects the half-open range [startMin, endMin).
func (s TimeSlot) Overlaps(startMin, endMin int) bool {
	return !(s.EndMin <= startMin || s.StartMin >= endMin)
}

// StartsWithin reports whether the slot start falls inside [startMin, endMin).
func (s TimeSlot) StartsWithin(startMin, endMin int) bool {
	return s.StartMin >= startMin && s.StartMin < endMin
}

// DivisionTimeGrid is the ordered slot sequence of one division. Gaps are allowed.
type DivisionTimeGrid []TimeSlot

// Valid checks slot ordering: every slot is non-empty and starts strictly after the previous one.
func (g DivisionTimeGrid) Valid() bool {
	for i, slot := range g {
		if slot.StartMin >= slot.EndMin {
			return false
		}
		if i > 0 && slot.StartMin <= g[i-1].StartMin {
			return false
		}
	}
	return true
}

// Span returns the first start and last end of the grid.
func (g DivisionTimeGrid) Span() (int, int, bool) {
	if len(g) == 0 {
		return 0, 0, false
	}
	return g[0].StartMin, g[len(g)-1].EndMin, true
}

// DayGrid is the published grid for a day: a unified grid wide enough for every
// division plus each division's own grid.
type DayGrid struct {
	Unified   DivisionTimeGrid            `json:"unified"`
	Divisions map[string]DivisionTimeGrid `json:"divisions,omitempty"`
}

// ForDivision returns the division's grid, falling back to the unified grid.
func (g DayGrid) ForDivision(name string) DivisionTimeGrid {
	if grid, ok := g.Divisions[name]; ok && len(grid) > 0 {
		return grid
	}
	return g.Unified
}

// SkeletonBlock is one structural block of a day template.
type SkeletonBlock struct {
	ID        string `json:"id,omitempty"`
	Division  string `json:"division"`
	Event     string `json:"event,omitempty"`
	Type      string `json:"type,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
