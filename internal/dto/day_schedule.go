package dto

import (
	"encoding/json"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// DayPath identifies a camp day from the request path.
type DayPath struct {
	CampID string `uri:"campId" validate:"required,max=64"`
	Date   string `uri:"date" validate:"required,datetime=2006-01-02"`
}

// CreateVersionRequest appends a draft version. Payload is stored as received and
// normalised when read back.
type CreateVersionRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// CreateVersionResponse acknowledges a stored draft.
type CreateVersionResponse struct {
	ID        string `json:"id"`
	CampID    string `json:"campId"`
	Date      string `json:"date"`
	Scheduled bool   `json:"reconcileScheduled"`
}

// ReconcileRequest tunes a reconcile run.
type ReconcileRequest struct {
	IncrementMinutes int  `json:"incrementMinutes" validate:"omitempty,min=5,max=120"`
	SkipValidation   bool `json:"skipValidation"`
}

// MergeResult reports a merge run. Success=false carries Error and leaves the
// previously published day untouched.
type MergeResult struct {
	Success        bool   `json:"success"`
	ProcessedCount int    `json:"processedCount"`
	SkippedCount   int    `json:"skippedCount"`
	BunkCount      int    `json:"bunkCount"`
	Phase          string `json:"phase"`
	Error          string `json:"error,omitempty"`
}

// ReconcileResponse combines a merge and the validation that followed it.
type ReconcileResponse struct {
	Merge  MergeResult            `json:"merge"`
	Report *models.ConflictReport `json:"report,omitempty"`
}

// ScheduleReconcileResponse acknowledges a debounced reconcile trigger.
type ScheduleReconcileResponse struct {
	Key     string `json:"key"`
	DelayMs int64  `json:"delayMs"`
}

// SlotLookupQuery asks which slots and entry cover a range for a bunk. Times are
// either clock strings ("9:30am") or minutes from midnight.
type SlotLookupQuery struct {
	Bunk  string `form:"bunk" validate:"required"`
	Start string `form:"start" validate:"required"`
	End   string `form:"end" validate:"required"`
}

// SlotLookupResponse answers a SlotLookupQuery.
type SlotLookupResponse struct {
	Bunk        string        `json:"bunk"`
	Division    string        `json:"division,omitempty"`
	StartMin    int           `json:"startMin"`
	EndMin      int           `json:"endMin"`
	SlotIndices []int         `json:"slotIndices"`
	Entry       *models.Entry `json:"entry,omitempty"`
	SlotIndex   *int          `json:"slotIndex,omitempty"`
	Match       string        `json:"match,omitempty"`
}
