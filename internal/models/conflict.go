package models

// FindingKind classifies a validation finding.
type FindingKind string

const (
	FindingCrossDivisionConflict   FindingKind = "CROSS_DIVISION_CONFLICT"
	FindingCapacityExceeded        FindingKind = "CAPACITY_EXCEEDED"
	FindingSameDayRepetition       FindingKind = "SAME_DAY_REPETITION"
	FindingMissingRequiredActivity FindingKind = "MISSING_REQUIRED_ACTIVITY"
	FindingEmptySlot               FindingKind = "EMPTY_SLOT"
)

// Finding is one structured validation error or warning.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	Resource    string      `json:"resource,omitempty"`
	Activity    string      `json:"activity,omitempty"`
	Divisions   []string    `json:"divisions,omitempty"`
	Bunks       []string    `json:"bunks,omitempty"`
	SlotIndices []int       `json:"slotIndices,omitempty"`
	StartMin    int         `json:"startMin"`
	EndMin      int         `json:"endMin"`
	Count       int         `json:"count,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
	Message     string      `json:"message"`
}

// ConflictReport is the validator output. Presentation order is the caller's concern.
type ConflictReport struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// HasIssues reports whether anything was found.
func (r ConflictReport) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// CountByKind tallies findings across errors and warnings.
func (r ConflictReport) CountByKind() map[FindingKind]int {
	counts := make(map[FindingKind]int)
	for _, f := range r.Errors {
		counts[f.Kind]++
	}
	for _, f := range r.Warnings {
		counts[f.Kind]++
	}
	return counts
}
