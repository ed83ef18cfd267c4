package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Division is a cohort of bunks sharing a nominal daily window.
type Division struct {
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Bunks     BunkList `json:"bunks"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
}

// HasBunk reports membership using normalised identifiers.
func (d Division) HasBunk(bunkID string) bool {
	target := NormalizeBunkID(bunkID)
	for _, member := range d.Bunks {
		if NormalizeBunkID(member) == target {
			return true
		}
	}
	return false
}

// BunkList decodes member identifiers written either as strings or as numbers.
type BunkList []string

// UnmarshalJSON accepts ["5", 6, "7A"].
func (b *BunkList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make(BunkList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		if err := dec.Decode(&n); err == nil {
			result = append(result, n.String())
		}
	}
	*b = result
	return nil
}

// NormalizeBunkID canonicalises identifiers so "5", " 5 " and "5.0" compare equal.
func NormalizeBunkID(id string) string {
	trimmed := strings.TrimSpace(id)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return trimmed
}
