package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"9:00 am", 540, true},
		{"12:30 pm", 750, true},
		{"12:00am", 0, true},
		{"4:00PM", 960, true},
		{" 9 : 15 AM ", 555, true},
		{"14:45", 885, true},
		{"garbage", 0, false},
		{"", 0, false},
		{"13:00 pm", 0, false},
		{"9:75", 0, false},
		{"24:00", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func TestFormatTimeAndLabel(t *testing.T) {
	assert.Equal(t, "9:00 AM", FormatTime(540))
	assert.Equal(t, "12:30 PM", FormatTime(750))
	assert.Equal(t, "12:00 AM", FormatTime(0))
	assert.Equal(t, "9:00 AM - 9:30 AM", SlotLabel(540, 570))
}

func TestBuildGridSpansEveryDivision(t *testing.T) {
	blocks := []models.SkeletonBlock{
		{Division: "X", StartTime: "8:00am", EndTime: "9:00am"},
		{Division: "Y", StartTime: "9:30am", EndTime: "4:00pm"},
	}
	grid := BuildGrid(blocks, nil, 30)
	start, end, ok := grid.Span()
	require.True(t, ok)
	assert.Equal(t, 480, start)
	assert.Equal(t, 960, end)
	assert.Len(t, grid, 16)
	assert.True(t, grid.Valid())
	assert.Equal(t, "8:00 AM - 8:30 AM", grid[0].Label)
}

func TestBuildGridDefaultsAndDivisionBounds(t *testing.T) {
	grid := BuildGrid(nil, nil, 0)
	start, end, _ := grid.Span()
	assert.Equal(t, models.DefaultDayStartMin, start)
	assert.Equal(t, models.DefaultDayEndMin, end)
	assert.Len(t, grid, 14)

	grid = BuildGrid(nil, []DivisionBounds{{Division: "A", StartTime: "10:00am", EndTime: "5:00pm"}, {Division: "B", StartTime: "bogus", EndTime: "3:00pm"}}, 60)
	start, end, _ = grid.Span()
	assert.Equal(t, 600, start)
	assert.Equal(t, 1020, end)
}

func TestBuildGridDegenerateGuard(t *testing.T) {
	grid := BuildGrid([]models.SkeletonBlock{{StartTime: "6:00pm", EndTime: "5:00pm"}}, nil, 30)
	start, end, ok := grid.Span()
	require.True(t, ok)
	assert.Equal(t, 1080, start)
	assert.Equal(t, 1140, end)
	assert.Len(t, grid, 2)
}

func TestBuildGridClipsFinalSlot(t *testing.T) {
	grid := BuildGrid([]models.SkeletonBlock{{StartTime: "9:00am", EndTime: "10:15am"}}, nil, 30)
	require.Len(t, grid, 3)
	assert.Equal(t, 600, grid[2].StartMin)
	assert.Equal(t, 615, grid[2].EndMin)
	assert.True(t, grid.Valid())
}

func TestBuildDivisionGrids(t *testing.T) {
	divisions := []models.Division{
		{Name: "Juniors", StartTime: "9:00am", EndTime: "12:00pm"},
		{Name: "Seniors", StartTime: "10:00am", EndTime: "11:00am"},
	}
	blocks := []models.SkeletonBlock{
		{Division: "Juniors", Event: "Lunch", StartTime: "11:00am", EndTime: "12:00pm"},
		{Division: "Juniors", Event: "Swim", StartTime: "9:00am", EndTime: "10:00am"},
		{Division: "Juniors", Event: "Overlap", StartTime: "9:30am", EndTime: "10:30am"},
		{Division: "Juniors", Event: "Broken", StartTime: "nope", EndTime: "10:30am"},
	}
	grids := BuildDivisionGrids(blocks, divisions, 30)

	juniors := grids["Juniors"]
	require.Len(t, juniors, 2)
	assert.True(t, juniors.Valid())
	assert.Equal(t, 540, juniors[0].StartMin)
	assert.Equal(t, "Swim (9:00 AM - 10:00 AM)", juniors[0].Label)
	assert.Equal(t, 660, juniors[1].StartMin)

	seniors := grids["Seniors"]
	require.Len(t, seniors, 2)
	assert.Equal(t, 600, seniors[0].StartMin)
	assert.Equal(t, 660, seniors[1].EndMin)
}

func TestBuildDayGrid(t *testing.T) {
	divisions := []models.Division{{Name: "Juniors", StartTime: "8:30am", EndTime: "3:00pm"}}
	blocks := []models.SkeletonBlock{{Division: "Juniors", StartTime: "9:00am", EndTime: "10:00am"}}
	grid := BuildDayGrid(blocks, divisions, 30)

	start, end, _ := grid.Unified.Span()
	assert.Equal(t, 510, start)
	assert.Equal(t, 900, end)
	assert.Len(t, grid.Divisions["Juniors"], 1)
	for name, g := range grid.Divisions {
		assert.True(t, g.Valid(), name)
	}
}
