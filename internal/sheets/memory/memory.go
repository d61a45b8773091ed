// Package memory is a SummaryWriter that keeps what it was given, for
// running the mirror worker without a spreadsheet.
package memory

import (
	"context"
	"sync"

	"prestes/internal/core"
	ports "prestes/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	last   core.Stats
	writes int
	err    error
}

var _ ports.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) WriteSummary(_ context.Context, stats core.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.last = stats
	s.writes++
	return nil
}

// FailWith makes subsequent writes return err. nil restores normal writes.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Last returns the most recent stats written and the number of writes.
func (s *Store) Last() (core.Stats, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.writes
}
