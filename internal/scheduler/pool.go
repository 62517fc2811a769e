package scheduler

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	t "ulabuild/internal/types"
)

// UnitFunc processes one unit. It must not retain the unit after returning.
type UnitFunc func(u t.SourceUnit) t.Outcome

// Params configures one pool run.
type Params struct {
	Units []t.SourceUnit

	// Maximum number of units processed concurrently (<=0 means DefaultWorkers).
	NParallel int
	Run       UnitFunc

	// Optional; invoked from worker goroutines as each unit finishes.
	OnDone func(u t.SourceUnit, o t.Outcome)
}

// DefaultWorkers is the host parallelism.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Workers resolves a caller override against the default.
func Workers(n int) int {
	if n <= 0 {
		return DefaultWorkers()
	}
	return n
}

// Run maps p.Run over p.Units with at most p.NParallel in flight and returns
// one outcome per unit, at the unit's position in p.Units. Each worker writes
// only its own slot. A panic inside p.Run becomes a Failure for that unit.
// Run returns after every unit has finished.
func Run(p Params) ([]t.Outcome, error) {
	if p.Run == nil {
		return nil, errors.New("scheduler: Run callback is nil")
	}
	outcomes := make([]t.Outcome, len(p.Units))
	if len(p.Units) == 0 {
		return outcomes, nil
	}

	var g errgroup.Group
	g.SetLimit(Workers(p.NParallel))
	for i, u := range p.Units {
		g.Go(func() error {
			o := runOne(p.Run, u)
			outcomes[i] = o
			if p.OnDone != nil {
				p.OnDone(u, o)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

func runOne(fn UnitFunc, u t.SourceUnit) (o t.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = t.Failure(fmt.Sprintf("internal compiler error: %v in <%s>", r, u.AbsPath))
		}
	}()
	o = fn(u)
	if o.Kind() == 0 {
		o = t.Failure(fmt.Sprintf("internal compiler error: no outcome in <%s>", u.AbsPath))
	}
	return o
}
