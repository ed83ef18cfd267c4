package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// DefaultGridIncrement is the slot width used when callers pass a non-positive increment.
const DefaultGridIncrement = 30

var timePattern = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*:\s*(\d{2})\s*(am|pm)?\s*$`)

// ParseTime converts "H:MM", "H:MMam" or "H : MM PM" into minutes from midnight.
// Unparseable input returns ok=false and contributes nothing to a grid.
func ParseTime(raw string) (int, bool) {
	match := timePattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil || minutes > 59 {
		return 0, false
	}
	switch strings.ToLower(match[3]) {
	case "am":
		if hours < 1 || hours > 12 {
			return 0, false
		}
		if hours == 12 {
			hours = 0
		}
	case "pm":
		if hours < 1 || hours > 12 {
			return 0, false
		}
		if hours != 12 {
			hours += 12
		}
	default:
		if hours > 23 {
			return 0, false
		}
	}
	return hours*60 + minutes, true
}

// FormatTime renders minutes from midnight on a 12-hour clock, e.g. "9:30 AM".
func FormatTime(min int) string {
	min = ((min % 1440) + 1440) % 1440
	hours, minutes := min/60, min%60
	suffix := "AM"
	if hours >= 12 {
		suffix = "PM"
	}
	hours %= 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, minutes, suffix)
}

// SlotLabel renders a slot range label.
func SlotLabel(startMin, endMin int) string {
	return FormatTime(startMin) + " - " + FormatTime(endMin)
}

// DivisionBounds is the nominal window of a division as configured.
type DivisionBounds struct {
	Division  string
	StartTime string
	EndTime   string
}

// BoundsFromDivisions extracts the configured windows.
func BoundsFromDivisions(divisions []models.Division) []DivisionBounds {
	bounds := make([]DivisionBounds, 0, len(divisions))
	for _, div := range divisions {
		bounds = append(bounds, DivisionBounds{Division: div.Name, StartTime: div.StartTime, EndTime: div.EndTime})
	}
	return bounds
}

// BuildGrid emits a uniform grid spanning every skeleton block and division window.
func BuildGrid(blocks []models.SkeletonBlock, bounds []DivisionBounds, increment int) models.DivisionTimeGrid {
	if increment <= 0 {
		increment = DefaultGridIncrement
	}
	minTime, maxTime := models.DefaultDayStartMin, models.DefaultDayEndMin
	haveMin, haveMax := false, false
	observe := func(startRaw, endRaw string) {
		if start, ok := ParseTime(startRaw); ok && (!haveMin || start < minTime) {
			minTime, haveMin = start, true
		}
		if end, ok := ParseTime(endRaw); ok && (!haveMax || end > maxTime) {
			maxTime, haveMax = end, true
		}
	}
	for _, block := range blocks {
		observe(block.StartTime, block.EndTime)
	}
	for _, b := range bounds {
		observe(b.StartTime, b.EndTime)
	}
	if (haveMin || haveMax) && maxTime <= minTime {
		maxTime = minTime + 60
	}
	return uniformGrid(minTime, maxTime, increment)
}

// BuildDivisionGrids builds one grid per division. A division with usable skeleton
// blocks gets one slot per block; otherwise a uniform grid over its own window.
func BuildDivisionGrids(blocks []models.SkeletonBlock, divisions []models.Division, increment int) map[string]models.DivisionTimeGrid {
	byDivision := make(map[string][]models.SkeletonBlock)
	for _, block := range blocks {
		byDivision[block.Division] = append(byDivision[block.Division], block)
	}
	grids := make(map[string]models.DivisionTimeGrid, len(divisions))
	for _, div := range divisions {
		grid := blockGrid(byDivision[div.Name])
		if len(grid) == 0 {
			grid = BuildGrid(nil, []DivisionBounds{{Division: div.Name, StartTime: div.StartTime, EndTime: div.EndTime}}, increment)
		}
		grids[div.Name] = grid
	}
	return grids
}

// BuildDayGrid regenerates the full published grid for a skeleton.
func BuildDayGrid(blocks []models.SkeletonBlock, divisions []models.Division, increment int) models.DayGrid {
	return models.DayGrid{
		Unified:   BuildGrid(blocks, BoundsFromDivisions(divisions), increment),
		Divisions: BuildDivisionGrids(blocks, divisions, increment),
	}
}

func uniformGrid(minTime, maxTime, increment int) models.DivisionTimeGrid {
	grid := make(models.DivisionTimeGrid, 0, (maxTime-minTime)/increment+1)
	for start := minTime; start < maxTime; start += increment {
		end := start + increment
		if end > maxTime {
			end = maxTime
		}
		grid = append(grid, models.TimeSlot{StartMin: start, EndMin: end, Label: SlotLabel(start, end)})
	}
	return grid
}

func blockGrid(blocks []models.SkeletonBlock) models.DivisionTimeGrid {
	slots := make([]models.TimeSlot, 0, len(blocks))
	for _, block := range blocks {
		start, okStart := ParseTime(block.StartTime)
		end, okEnd := ParseTime(block.EndTime)
		if !okStart || !okEnd || end <= start {
			continue
		}
		label := SlotLabel(start, end)
		if event := strings.TrimSpace(block.Event); event != "" {
			label = event + " (" + label + ")"
		}
		slots = append(slots, models.TimeSlot{StartMin: start, EndMin: end, Label: label})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].StartMin < slots[j].StartMin })

	grid := make(models.DivisionTimeGrid, 0, len(slots))
	for _, slot := range slots {
		if n := len(grid); n > 0 && slot.StartMin < grid[n-1].EndMin {
			// overlapping or duplicate block; the earlier one owns the range
			continue
		}
		grid = append(grid, slot)
	}
	return grid
}
