package models

// Matchup is one pairing inside a league slot.
type Matchup struct {
	TeamA    string `json:"teamA"`
	TeamB    string `json:"teamB"`
	Resource string `json:"resource,omitempty"`
	Sport    string `json:"sport,omitempty"`
}

// LeagueSlot holds the matchups a league game places into one grid slot.
type LeagueSlot struct {
	GameLabel string    `json:"gameLabel,omitempty"`
	Sport     string    `json:"sport,omitempty"`
	Matchups  []Matchup `json:"matchups"`
}

// LeagueTable maps slot index to league slot for one division.
type LeagueTable map[int]LeagueSlot

// LeagueAssignments maps division name to its league table.
type LeagueAssignments map[string]LeagueTable

// HasMatchup reports whether any matchup is recorded for the division/slot.
func (l LeagueAssignments) HasMatchup(division string, slotIndex int) bool {
	table, ok := l[division]
	if !ok {
		return false
	}
	slot, ok := table[slotIndex]
	return ok && len(slot.Matchups) > 0
}
