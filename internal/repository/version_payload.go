package repository

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// Editor releases stored drafts under different field names, sometimes as
// JSON-encoded strings. Order expresses preference.
var (
	assignmentFields = []string{"scheduleAssignments", "assignments", "bunkSchedules", "schedule", "scheduleData", "data"}
	skeletonFields   = []string{"skeleton", "manualSkeleton", "dailySkeleton", "structure"}
	leagueFields     = []string{"leagueAssignments", "leagues", "leagueSchedule"}
	entryFields      = []string{
		"resource", "field", "location", "activityName", "_activity", "activity", "sport",
		"continuation", "_continuation", "isLeague", "_isLeague", "hasMatchups", "_hasMatchups",
		"matchups", "overrideStartMin", "_startMin", "startMin",
	}
)

const maxPayloadDepth = 3

// NormalizeVersionPayload converts a stored draft payload into the canonical shape.
// ok is false when no schedule field can be located; malformed parts contribute nothing.
func NormalizeVersionPayload(raw []byte) (models.VersionPayload, bool) {
	root, ok := decodeObject(raw, 0)
	if !ok {
		return models.VersionPayload{}, false
	}
	container, assignmentsRaw, ok := locateAssignments(root, 0)
	if !ok {
		return models.VersionPayload{}, false
	}

	payload := models.VersionPayload{Assignments: decodeAssignments(assignmentsRaw)}
	for _, obj := range []map[string]json.RawMessage{container, root} {
		if payload.Skeleton == nil {
			payload.Skeleton = findSkeleton(obj)
		}
		if payload.LeagueAssignments == nil {
			payload.LeagueAssignments = findLeagues(obj)
		}
	}
	return payload, true
}

// decodeObject parses a JSON object, unwrapping string-encoded JSON.
func decodeObject(raw []byte, depth int) (map[string]json.RawMessage, bool) {
	if depth > maxPayloadDepth {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return obj, true
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return decodeObject([]byte(encoded), depth+1)
	}
	return nil, false
}

// decodeArray parses a JSON array, unwrapping string-encoded JSON.
func decodeArray(raw []byte, depth int) ([]json.RawMessage, bool) {
	if depth > maxPayloadDepth {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && arr != nil {
		return arr, true
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return decodeArray([]byte(encoded), depth+1)
	}
	return nil, false
}

func locateAssignments(obj map[string]json.RawMessage, depth int) (map[string]json.RawMessage, map[string]json.RawMessage, bool) {
	if depth > maxPayloadDepth {
		return nil, nil, false
	}
	for _, field := range assignmentFields {
		value, present := obj[field]
		if !present {
			continue
		}
		candidate, ok := decodeObject(value, 0)
		if !ok {
			continue
		}
		if looksLikeAssignments(candidate) {
			return obj, candidate, true
		}
		if container, assignments, ok := locateAssignments(candidate, depth+1); ok {
			return container, assignments, true
		}
	}
	return nil, nil, false
}

// looksLikeAssignments accepts objects keyed by bunk whose values are null or
// arrays of entry-shaped cells. Structure field names are never bunk ids.
func looksLikeAssignments(obj map[string]json.RawMessage) bool {
	for key, value := range obj {
		if isStructureField(key) {
			return false
		}
		trimmed := bytes.TrimSpace(value)
		if bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		cells, ok := decodeArray(trimmed, 0)
		if !ok {
			return false
		}
		for _, cell := range cells {
			if !looksLikeEntry(cell) {
				return false
			}
		}
	}
	return true
}

func isStructureField(key string) bool {
	for _, fields := range [][]string{skeletonFields, leagueFields} {
		for _, field := range fields {
			if key == field {
				return true
			}
		}
	}
	return false
}

// looksLikeEntry accepts null, a plain label, or an object carrying entry fields.
func looksLikeEntry(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	switch trimmed[0] {
	case '"':
		return true
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return false
		}
		if len(obj) == 0 {
			return true
		}
		for _, field := range entryFields {
			if _, ok := obj[field]; ok {
				return true
			}
		}
	}
	return false
}

func decodeAssignments(obj map[string]json.RawMessage) models.ScheduleAssignment {
	result := make(models.ScheduleAssignment, len(obj))
	for bunk, value := range obj {
		cells, _ := decodeArray(value, 0)
		entries := make([]*models.Entry, len(cells))
		for i, cell := range cells {
			entries[i] = decodeEntry(cell)
		}
		result[models.NormalizeBunkID(bunk)] = entries
	}
	return result
}

func decodeEntry(raw json.RawMessage) *models.Entry {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var label string
	if err := json.Unmarshal(trimmed, &label); err == nil {
		if strings.TrimSpace(label) == "" {
			return nil
		}
		return &models.Entry{Activity: strings.TrimSpace(label)}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	entry := &models.Entry{
		Resource:     firstString(obj, "resource", "field", "location"),
		Activity:     firstString(obj, "activityName", "_activity", "activity"),
		Sport:        firstString(obj, "sport"),
		Continuation: firstBool(obj, "continuation", "_continuation"),
		IsLeague:     firstBool(obj, "isLeague", "_isLeague"),
		HasMatchups:  firstBool(obj, "hasMatchups", "_hasMatchups"),
	}
	if matchups, ok := obj["matchups"]; ok {
		if arr, ok := decodeArray(matchups, 0); ok && len(arr) > 0 {
			entry.HasMatchups = true
		}
	}
	if start, ok := firstInt(obj, "overrideStartMin", "_startMin", "startMin"); ok {
		entry.OverrideStartMin = &start
	}
	return entry
}

func findSkeleton(obj map[string]json.RawMessage) []models.SkeletonBlock {
	for _, field := range skeletonFields {
		value, present := obj[field]
		if !present {
			continue
		}
		items, ok := decodeArray(value, 0)
		if !ok {
			continue
		}
		blocks := make([]models.SkeletonBlock, 0, len(items))
		for _, item := range items {
			block, ok := decodeObject(item, 0)
			if !ok {
				continue
			}
			blocks = append(blocks, models.SkeletonBlock{
				ID:        firstString(block, "id"),
				Division:  firstString(block, "division", "divisionName"),
				Event:     firstString(block, "event", "name"),
				Type:      firstString(block, "type"),
				StartTime: firstString(block, "startTime", "start"),
				EndTime:   firstString(block, "endTime", "end"),
			})
		}
		return blocks
	}
	return nil
}

func findLeagues(obj map[string]json.RawMessage) models.LeagueAssignments {
	for _, field := range leagueFields {
		value, present := obj[field]
		if !present {
			continue
		}
		divisions, ok := decodeObject(value, 0)
		if !ok {
			continue
		}
		return decodeLeagueAssignments(divisions)
	}
	return nil
}

func decodeLeagueAssignments(divisions map[string]json.RawMessage) models.LeagueAssignments {
	result := make(models.LeagueAssignments, len(divisions))
	for division, value := range divisions {
		slots, ok := decodeObject(value, 0)
		if !ok {
			continue
		}
		result[division] = decodeLeagueTable(slots)
	}
	return result
}

// decodeLeagueTable reads slot-index keyed league slots; non-numeric keys are dropped.
func decodeLeagueTable(slots map[string]json.RawMessage) models.LeagueTable {
	table := make(models.LeagueTable, len(slots))
	for key, slotRaw := range slots {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || index < 0 {
			continue
		}
		slotObj, ok := decodeObject(slotRaw, 0)
		if !ok {
			continue
		}
		table[index] = decodeLeagueSlot(slotObj)
	}
	return table
}

func decodeLeagueSlot(obj map[string]json.RawMessage) models.LeagueSlot {
	slot := models.LeagueSlot{
		GameLabel: firstString(obj, "gameLabel", "label"),
		Sport:     firstString(obj, "sport"),
		Matchups:  []models.Matchup{},
	}
	items, _ := decodeArray(obj["matchups"], 0)
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if parts := strings.SplitN(text, " vs ", 2); len(parts) == 2 {
				slot.Matchups = append(slot.Matchups, models.Matchup{TeamA: strings.TrimSpace(parts[0]), TeamB: strings.TrimSpace(parts[1])})
			}
			continue
		}
		m, ok := decodeObject(item, 0)
		if !ok {
			continue
		}
		slot.Matchups = append(slot.Matchups, models.Matchup{
			TeamA:    firstString(m, "teamA", "team1"),
			TeamB:    firstString(m, "teamB", "team2"),
			Resource: firstString(m, "resource", "field"),
			Sport:    firstString(m, "sport"),
		})
	}
	return slot
}

// firstString reads the first present field as a string. Objects with a "name"
// field are accepted, as older drafts stored resources as {"name": ...}.
func firstString(obj map[string]json.RawMessage, fields ...string) string {
	for _, field := range fields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil {
			return n.String()
		}
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(value, &named); err == nil && strings.TrimSpace(named.Name) != "" {
			return strings.TrimSpace(named.Name)
		}
	}
	return ""
}

func firstBool(obj map[string]json.RawMessage, fields ...string) bool {
	for _, field := range fields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(value, &b); err == nil {
			return b
		}
	}
	return false
}

func firstInt(obj map[string]json.RawMessage, fields ...string) (int, bool) {
	for _, field := range fields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(value, &f); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
