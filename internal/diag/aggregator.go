// Package diag collects per-unit diagnostics into a run-wide failure report.
package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Aggregator tallies outcomes and keeps failure diagnostics keyed by the
// unit's discovery index, so Blocks is ordered regardless of arrival order.
type Aggregator struct {
	mu        sync.Mutex
	total     int
	successes int
	blocks    map[int][]string
	seen      map[int]struct{}
}

// New returns an aggregator for total units.
func New(total int) *Aggregator {
	return &Aggregator{
		total:  total,
		blocks: make(map[int][]string),
		seen:   make(map[int]struct{}, total),
	}
}

// Succeed records a successful unit.
func (a *Aggregator) Succeed(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.markLocked(index); err != nil {
		return err
	}
	a.successes++
	return nil
}

// Fail records a failed unit with its diagnostics.
func (a *Aggregator) Fail(index int, diagnostics []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.markLocked(index); err != nil {
		return err
	}
	a.blocks[index] = append([]string(nil), diagnostics...)
	return nil
}

func (a *Aggregator) markLocked(index int) error {
	if index < 0 || index >= a.total {
		return fmt.Errorf("diag: unit index %d out of range [0,%d)", index, a.total)
	}
	if _, dup := a.seen[index]; dup {
		return fmt.Errorf("diag: unit %d already recorded", index)
	}
	a.seen[index] = struct{}{}
	return nil
}

// Total is the number of units the run discovered.
func (a *Aggregator) Total() int { return a.total }

// Failures is the number of units recorded as failed.
func (a *Aggregator) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// Successes is the number of units recorded as succeeded.
func (a *Aggregator) Successes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.successes
}

// OK reports whether no failure was recorded.
func (a *Aggregator) OK() bool { return a.Failures() == 0 }

// Blocks returns one diagnostic block per failed unit in discovery order.
func (a *Aggregator) Blocks() [][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := make([]int, 0, len(a.blocks))
	for i := range a.blocks {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([][]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, append([]string(nil), a.blocks[i]...))
	}
	return out
}
