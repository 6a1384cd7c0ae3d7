// Package session owns the loaded dataset and the active filters.
//
// A State is the single writer of both. Readers take a View, an immutable
// snapshot from which every derived figure is computed.
package session

import (
	"sync"
	"time"

	"triagelens/adapters/excel"
	"triagelens/domain/core"
	"triagelens/domain/table"
	"triagelens/internal"
	"triagelens/internal/errors"
	"triagelens/internal/filter"
)

// Status is the load lifecycle of a session
type Status string

const (
	StatusIdle    Status = "idle"
	StatusParsing Status = "parsing"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

var logger = internal.DefaultLogger.With("Session")

// State holds the current dataset, filters and load status
type State struct {
	mu         sync.RWMutex
	status     Status
	source     string
	pending    string
	rows       *table.RowSet
	filters    filter.Set
	errMsg     string
	generation uint64
	loadedAt   time.Time
}

// NewState returns an idle session
func NewState() *State {
	return &State{status: StatusIdle}
}

// BeginLoad marks a new upload as in flight and returns its generation.
// Only the result carrying the latest generation is accepted.
func (s *State) BeginLoad(source string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.status = StatusParsing
	s.pending = source
	s.errMsg = ""
	logger.Debug("load %d started for %s", s.generation, source)
	return s.generation
}

// CompleteLoad records the outcome of the load started with generation.
// It reports false when a newer load has begun, in which case the result is
// dropped. A successful load replaces the rows and source and clears every
// filter; a failed one keeps the previous rows under their own source.
func (s *State) CompleteLoad(generation uint64, rows *table.RowSet, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		logger.Debug("dropping stale load %d (current %d)", generation, s.generation)
		return false
	}

	if err == nil && rows == nil {
		err = errors.ParseError(excel.ErrEmptySheet)
	}
	if err != nil {
		s.status = StatusError
		s.errMsg = err.Error()
		logger.Warn("load of %s failed: %v", s.pending, err)
		return true
	}

	s.status = StatusReady
	s.source = s.pending
	s.pending = ""
	s.rows = rows.WithSource(s.source)
	s.filters = filter.Set{}
	s.errMsg = ""
	s.loadedAt = time.Now()
	logger.Info("loaded %s: %d rows, %d columns", s.source, rows.Len(), len(rows.Header()))
	return true
}

// Reset returns the session to idle and invalidates any load in flight
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.status = StatusIdle
	s.source = ""
	s.pending = ""
	s.rows = nil
	s.filters = filter.Set{}
	s.errMsg = ""
	s.loadedAt = time.Time{}
}

// AddFilter appends a rule to the active filters
func (s *State) AddFilter(rule filter.Rule) filter.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == "" {
		rule.ID = core.NewRuleID()
	}
	s.filters = s.filters.Add(rule)
	return rule
}

// RemoveFilter drops the rule with id
func (s *State) RemoveFilter(id core.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.filters.Remove(id)
	if err != nil {
		return err
	}
	s.filters = next
	return nil
}

// UpdateFilter edits the rule with id and returns it as stored
func (s *State) UpdateFilter(id core.RuleID, upd filter.RuleUpdate) (filter.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.filters.Update(id, upd)
	if err != nil {
		return filter.Rule{}, err
	}
	s.filters = next
	for _, r := range next.Rules() {
		if r.ID == id {
			return r, nil
		}
	}
	return filter.Rule{}, core.NewFilterNotFoundError(id)
}

// ClearFilters removes every rule
func (s *State) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Clear()
}

// View returns a snapshot of the session
func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Status:     s.status,
		Source:     s.source,
		Pending:    s.pending,
		Error:      s.errMsg,
		Generation: s.generation,
		LoadedAt:   s.loadedAt,
		Rows:       s.rows,
		Filters:    s.filters,
	}
}
