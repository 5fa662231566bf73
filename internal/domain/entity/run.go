package entity

import (
	"sync"
	"sync/atomic"
)

// Row is one line of the input table, keyed by column name.
type Row struct {
	Index  int
	Fields map[string]string
	Values []string
}

type RowStatus string

const (
	RowStatusDone    RowStatus = "done"
	RowStatusFailed  RowStatus = "failed"
	RowStatusSkipped RowStatus = "skipped"
)

// RunState is owned by the orchestration loop. The stop flag and the
// progress snapshot are the only parts read or written from elsewhere.
type RunState struct {
	ID   string
	Rows []Row

	mu    sync.Mutex
	next  int
	stats RunStats

	stopped atomic.Bool
}

type RunStats struct {
	Total   int  `json:"total"`
	Next    int  `json:"next"`
	Done    int  `json:"done"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
	Stopped bool `json:"stopped"`
}

func NewRunState(id string, rows []Row) *RunState {
	return &RunState{ID: id, Rows: rows}
}

func (s *RunState) Stop() {
	s.stopped.Store(true)
}

func (s *RunState) Stopped() bool {
	return s.stopped.Load()
}

// Current returns the row at the cursor, or false when the table is exhausted.
func (s *RunState) Current() (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.Rows) {
		return Row{}, false
	}
	return s.Rows[s.next], true
}

// Advance records the status of the current row and moves the cursor.
func (s *RunState) Advance(status RowStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch status {
	case RowStatusDone:
		s.stats.Done++
	case RowStatusFailed:
		s.stats.Failed++
	case RowStatusSkipped:
		s.stats.Skipped++
	}
	s.next++
}

func (s *RunState) Snapshot() RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Total = len(s.Rows)
	st.Next = s.next
	st.Stopped = s.stopped.Load()
	return st
}
