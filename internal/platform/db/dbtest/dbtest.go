// Package dbtest provides in-memory stand-ins for the db transaction and
// counter interfaces, for service tests that run without Postgres.
package dbtest

import (
	"context"
	"sync"
)

// TxRunner runs fn directly and counts calls.
type TxRunner struct {
	mu    sync.Mutex
	Calls int
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	return fn(ctx)
}

// Sequencer counts per name starting at 1.
type Sequencer struct {
	mu     sync.Mutex
	values map[string]int64
	Err    error
}

func NewSequencer() *Sequencer {
	return &Sequencer{values: map[string]int64{}}
}

// Set makes the next value for name start+1.
func (s *Sequencer) Set(name string, start int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = start
}

func (s *Sequencer) Next(_ context.Context, name string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name]++
	return s.values[name], nil
}
