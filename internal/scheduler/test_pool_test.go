package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ulabuild/internal/types"
)

func makeUnits(n int) []types.SourceUnit {
	units := make([]types.SourceUnit, n)
	for i := range units {
		units[i] = types.SourceUnit{Index: i, AbsPath: fmt.Sprintf("/in/u%d.ula", i), RelPath: fmt.Sprintf("u%d.ula", i)}
	}
	return units
}

func TestRun_EachUnitExactlyOnce(t *testing.T) {
	units := makeUnits(50)
	var mu sync.Mutex
	calls := map[string]int{}

	outcomes, err := Run(Params{
		Units:     units,
		NParallel: 4,
		Run: func(u types.SourceUnit) types.Outcome {
			mu.Lock()
			calls[u.AbsPath]++
			mu.Unlock()
			return types.Success("out:" + u.RelPath)
		},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, len(units))
	for i, u := range units {
		assert.Equal(t, 1, calls[u.AbsPath])
		assert.Equal(t, "out:"+u.RelPath, outcomes[i].Text())
	}
}

func TestRun_PanicIsolatedToUnit(t *testing.T) {
	units := makeUnits(3)
	outcomes, err := Run(Params{
		Units:     units,
		NParallel: 2,
		Run: func(u types.SourceUnit) types.Outcome {
			if u.Index == 1 {
				panic("boom")
			}
			return types.Success("ok")
		},
	})
	require.NoError(t, err)
	assert.True(t, outcomes[0].OK())
	assert.True(t, outcomes[2].OK())
	require.False(t, outcomes[1].OK())
	assert.Equal(t, []string{"internal compiler error: boom in </in/u1.ula>"}, outcomes[1].Diagnostics())
}

func TestRun_ZeroOutcomeBecomesFailure(t *testing.T) {
	outcomes, err := Run(Params{
		Units: makeUnits(1),
		Run:   func(types.SourceUnit) types.Outcome { return types.Outcome{} },
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeFailure, outcomes[0].Kind())
}

func TestRun_RespectsBound(t *testing.T) {
	for _, limit := range []int{1, 3} {
		var inflight, peak int32
		_, err := Run(Params{
			Units:     makeUnits(12),
			NParallel: limit,
			Run: func(types.SourceUnit) types.Outcome {
				n := atomic.AddInt32(&inflight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inflight, -1)
				return types.Success("")
			},
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, int(peak), limit)
	}
}

func TestRun_SingleWorkerIsSerial(t *testing.T) {
	const per = 10 * time.Millisecond
	units := makeUnits(5)
	start := time.Now()
	_, err := Run(Params{
		Units:     units,
		NParallel: 1,
		Run: func(types.SourceUnit) types.Outcome {
			time.Sleep(per)
			return types.Success("")
		},
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(len(units))*per)
}

func TestRun_DrainsBeforeReturning(t *testing.T) {
	var done int32
	var seen int32
	_, err := Run(Params{
		Units:     makeUnits(8),
		NParallel: 8,
		Run: func(types.SourceUnit) types.Outcome {
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return types.Success("")
		},
		OnDone: func(types.SourceUnit, types.Outcome) { atomic.AddInt32(&seen, 1) },
	})
	require.NoError(t, err)
	assert.Equal(t, int32(8), atomic.LoadInt32(&done))
	assert.Equal(t, int32(8), atomic.LoadInt32(&seen))
}

func TestRun_EmptyAndNilCallback(t *testing.T) {
	out, err := Run(Params{Run: func(types.SourceUnit) types.Outcome { return types.Success("") }})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Run(Params{Units: makeUnits(1)})
	assert.Error(t, err)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.Equal(t, DefaultWorkers(), Workers(0))
	assert.Equal(t, DefaultWorkers(), Workers(-2))
}
