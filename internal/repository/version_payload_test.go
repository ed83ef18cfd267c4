package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

func TestNormalizeVersionPayloadCanonicalShape(t *testing.T) {
	raw := []byte(`{
		"skeleton": [{"id":"b1","division":"Juniors","event":"Swim","startTime":"9:00am","endTime":"9:45am"}],
		"scheduleAssignments": {
			"5": [{"field":"Gym","_activity":"Basketball"}, {"field":"Gym","continuation":true}, null],
			"6": ["Free"]
		},
		"leagueAssignments": {"Juniors": {"2": {"gameLabel":"Game 1","matchups":[{"teamA":"5","teamB":"6","field":"Field A"}]}}}
	}`)

	payload, ok := NormalizeVersionPayload(raw)
	require.True(t, ok)
	require.Len(t, payload.Skeleton, 1)
	assert.Equal(t, "Juniors", payload.Skeleton[0].Division)
	assert.Equal(t, "9:45am", payload.Skeleton[0].EndTime)

	bunk5 := payload.Assignments["5"]
	require.Len(t, bunk5, 3)
	assert.Equal(t, "Gym", bunk5[0].Resource)
	assert.Equal(t, "Basketball", bunk5[0].Activity)
	assert.True(t, bunk5[1].Continuation)
	assert.Nil(t, bunk5[2])
	assert.Equal(t, "Free", payload.Assignments["6"][0].Activity)

	require.Contains(t, payload.LeagueAssignments, "Juniors")
	slot := payload.LeagueAssignments["Juniors"][2]
	require.Len(t, slot.Matchups, 1)
	assert.Equal(t, "Field A", slot.Matchups[0].Resource)
	assert.True(t, payload.LeagueAssignments.HasMatchup("Juniors", 2))
}

func TestNormalizeVersionPayloadStringEncoded(t *testing.T) {
	raw := []byte(`{"data": "{\"assignments\": {\"7\": [{\"resource\": {\"name\": \"Field B\"}, \"sport\": \"Soccer\", \"_isLeague\": true, \"_startMin\": 600}]}, \"manualSkeleton\": \"[{\\\"division\\\":\\\"Seniors\\\",\\\"start\\\":\\\"10:00am\\\",\\\"end\\\":\\\"11:00am\\\"}]\"}"}`)

	payload, ok := NormalizeVersionPayload(raw)
	require.True(t, ok)
	entries := payload.Assignments["7"]
	require.Len(t, entries, 1)
	assert.Equal(t, "Field B", entries[0].Resource)
	assert.Equal(t, "Soccer", entries[0].ActivityName())
	assert.True(t, entries[0].IsLeague)
	require.NotNil(t, entries[0].OverrideStartMin)
	assert.Equal(t, 600, *entries[0].OverrideStartMin)

	require.Len(t, payload.Skeleton, 1)
	assert.Equal(t, "Seniors", payload.Skeleton[0].Division)
	assert.Equal(t, "10:00am", payload.Skeleton[0].StartTime)
}

func TestNormalizeVersionPayloadWholeDocumentEncoded(t *testing.T) {
	raw := []byte(`"{\"schedule\": {\"5.0\": [{\"location\": \"Lake\", \"activityName\": \"Canoe\"}]}}"`)

	payload, ok := NormalizeVersionPayload(raw)
	require.True(t, ok)
	require.Contains(t, payload.Assignments, "5")
	assert.Equal(t, "Lake", payload.Assignments["5"][0].Resource)
	assert.Nil(t, payload.Skeleton)
	assert.Nil(t, payload.LeagueAssignments)
}

func TestNormalizeVersionPayloadUnrecognized(t *testing.T) {
	cases := map[string]string{
		"no schedule field": `{"notes": "draft"}`,
		"not json":          `garbage`,
		"array root":        `[1,2,3]`,
		"empty":             ``,
		"wrong shape":       `{"assignments": {"5": "Gym"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := NormalizeVersionPayload([]byte(raw))
			assert.False(t, ok)
		})
	}
}

func TestNormalizeVersionPayloadWrappedSkeletonIsNotABunkMap(t *testing.T) {
	raw := []byte(`{"data": {"manualSkeleton": [{"division":"Juniors","event":"Swim","startTime":"9:00am","endTime":"9:45am"}]}}`)

	payload, ok := NormalizeVersionPayload(raw)
	assert.False(t, ok)
	assert.Empty(t, payload.Assignments)
}

func TestNormalizeVersionPayloadRejectsNonEntryCells(t *testing.T) {
	cases := map[string]string{
		"league table under wrapper": `{"schedule": {"leagues": []}}`,
		"block objects":              `{"data": {"Juniors": [{"division":"Juniors","startTime":"9:00am"}]}}`,
		"numeric cells":              `{"assignments": {"5": [1, 2]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := NormalizeVersionPayload([]byte(raw))
			assert.False(t, ok)
		})
	}
}

func TestNormalizeVersionPayloadMatchupsMarkEntry(t *testing.T) {
	payload, ok := NormalizeVersionPayload([]byte(`{"assignments": {"5": [{"matchups": ["5 vs 6"]}, {"_hasMatchups": true}]}}`))
	require.True(t, ok)
	entries := payload.Assignments["5"]
	require.Len(t, entries, 2)
	assert.True(t, entries[0].RecordsLeague())
	assert.True(t, entries[1].RecordsLeague())
}

func TestNormalizeSharingPolicy(t *testing.T) {
	assert.Equal(t, models.SharingPolicy{Type: models.SharingUnrestricted}, NormalizeSharingPolicy([]byte(`{"type":"all"}`)))
	assert.Equal(t, models.SharingPolicy{Type: models.SharingCustom, Capacity: 3}, NormalizeSharingPolicy([]byte(`{"type":"custom","capacity":"3"}`)))
	assert.Equal(t, models.SharingPolicy{Type: models.SharingCustom, Capacity: 4, AllowCrossDivision: true},
		NormalizeSharingPolicy([]byte(`{"type":"Custom","capacity":4,"allowCrossDivision":true}`)))
	assert.Equal(t, models.SharingPolicy{Type: models.SharingNotShareable}, NormalizeSharingPolicy([]byte(`{"type":"not_sharable"}`)))
	assert.Equal(t, models.SharingPolicy{Type: models.SharingNotShareable}, NormalizeSharingPolicy([]byte(`nope`)))
}
