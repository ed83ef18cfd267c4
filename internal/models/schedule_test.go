package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunkListAcceptsMixedIdentifiers(t *testing.T) {
	var div Division
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Juniors","bunks":["5", 6, "7A", 8.0]}`), &div))
	assert.Equal(t, BunkList{"5", "6", "7A", "8.0"}, div.Bunks)
	assert.True(t, div.HasBunk("6"))
	assert.True(t, div.HasBunk(" 5 "))
	assert.True(t, div.HasBunk("8"))
	assert.False(t, div.HasBunk("9"))
}

func TestNormalizeBunkID(t *testing.T) {
	assert.Equal(t, "5", NormalizeBunkID("5.0"))
	assert.Equal(t, "5", NormalizeBunkID(" 5 "))
	assert.Equal(t, "5.5", NormalizeBunkID("5.5"))
	assert.Equal(t, "Eagles", NormalizeBunkID("Eagles"))
}

func TestDivisionTimeGridValid(t *testing.T) {
	assert.True(t, DivisionTimeGrid{{StartMin: 540, EndMin: 570}, {StartMin: 600, EndMin: 660}}.Valid())
	assert.False(t, DivisionTimeGrid{{StartMin: 540, EndMin: 540}}.Valid())
	assert.False(t, DivisionTimeGrid{{StartMin: 600, EndMin: 630}, {StartMin: 600, EndMin: 660}}.Valid())
	assert.True(t, DivisionTimeGrid{}.Valid())
}

func TestDayGridForDivisionFallsBack(t *testing.T) {
	unified := DivisionTimeGrid{{StartMin: 540, EndMin: 570}}
	grid := DayGrid{Unified: unified, Divisions: map[string]DivisionTimeGrid{"Juniors": {{StartMin: 600, EndMin: 660}}}}
	assert.Equal(t, 600, grid.ForDivision("Juniors")[0].StartMin)
	assert.Equal(t, unified, grid.ForDivision("Seniors"))
}

func TestEntryHelpers(t *testing.T) {
	var empty *Entry
	assert.True(t, empty.IsBlank())
	assert.False(t, empty.RecordsLeague())
	assert.True(t, (&Entry{}).IsBlank())
	assert.False(t, (&Entry{Continuation: true}).IsBlank())
	assert.Equal(t, "Soccer", (&Entry{Sport: "Soccer"}).ActivityName())

	start := 600
	original := ScheduleAssignment{"5": {{Resource: "Gym", OverrideStartMin: &start}, nil}}
	clone := original.Clone()
	*clone["5"][0].OverrideStartMin = 630
	clone["5"][0].Resource = "Lake"
	assert.Equal(t, 600, *original["5"][0].OverrideStartMin)
	assert.Equal(t, "Gym", original["5"][0].Resource)

	entries, ok := original.Lookup("5.0")
	require.True(t, ok)
	assert.Len(t, entries, 2)
	assert.True(t, HasAssignedSlot(entries))
	assert.False(t, HasAssignedSlot([]*Entry{nil, {}}))
}

func TestLeagueAssignmentsHasMatchup(t *testing.T) {
	leagues := LeagueAssignments{"Juniors": {2: {Matchups: []Matchup{{TeamA: "5", TeamB: "6"}}}, 3: {}}}
	assert.True(t, leagues.HasMatchup("Juniors", 2))
	assert.False(t, leagues.HasMatchup("Juniors", 3))
	assert.False(t, leagues.HasMatchup("Seniors", 2))
	var none LeagueAssignments
	assert.False(t, none.HasMatchup("Juniors", 2))
}

func TestConflictReportCountByKind(t *testing.T) {
	report := ConflictReport{
		Errors:   []Finding{{Kind: FindingCapacityExceeded}, {Kind: FindingCapacityExceeded}},
		Warnings: []Finding{{Kind: FindingEmptySlot}},
	}
	assert.True(t, report.HasIssues())
	assert.Equal(t, 2, report.CountByKind()[FindingCapacityExceeded])
	assert.Equal(t, 1, report.CountByKind()[FindingEmptySlot])
	assert.False(t, ConflictReport{}.HasIssues())
}
