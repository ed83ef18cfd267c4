package service

import (
	"sync"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// DayStateStore holds the published state of each camp day for readers. States
// are replaced whole and never mutated after Replace.
type DayStateStore struct {
	mu     sync.RWMutex
	states map[string]*models.DayState
}

// NewDayStateStore constructs an empty store.
func NewDayStateStore() *DayStateStore {
	return &DayStateStore{states: make(map[string]*models.DayState)}
}

func dayKey(campID, date string) string {
	return campID + "|" + date
}

// Get returns the published state of a day.
func (s *DayStateStore) Get(campID, date string) (*models.DayState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[dayKey(campID, date)]
	return state, ok
}

// Replace swaps in a new state for its day.
func (s *DayStateStore) Replace(state *models.DayState) {
	if state == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[dayKey(state.CampID, state.Date)] = state
}

// Has reports whether a day has been published or hydrated.
func (s *DayStateStore) Has(campID, date string) bool {
	_, ok := s.Get(campID, date)
	return ok
}
