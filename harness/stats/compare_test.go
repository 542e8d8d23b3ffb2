package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baselineReport = `
---------- Begin Simulation Statistics ----------
simTicks 100 # warmup
---------- End Simulation Statistics   ----------

---------- Begin Simulation Statistics ----------
simSeconds                                   0.009216                       # Number of seconds simulated (Second)
simTicks                                   9216000000                       # Number of ticks simulated (Tick)
simInsts                                       393216                       # Number of instructions simulated (Count)
---------- End Simulation Statistics   ----------
`

func compared(t *testing.T, keys []string) *Table {
	t.Helper()
	baseFile, err := Parse(strings.NewReader(baselineReport))
	require.NoError(t, err)
	base, err := baseFile.ROI()
	require.NoError(t, err)

	candFile, err := Parse(strings.NewReader(sampleReport))
	require.NoError(t, err)
	cand, err := candFile.ROI()
	require.NoError(t, err)

	return Compare(base, cand, keys)
}

func TestCompare_DeltasForSharedKeys(t *testing.T) {
	table := compared(t, []string{"simTicks", "simInsts"})
	require.Len(t, table.Rows, 2)

	ticks := table.Rows[0]
	assert.Equal(t, "simTicks", ticks.Key)
	assert.True(t, ticks.BaseOK)
	assert.True(t, ticks.CandOK)
	assert.InDelta(t, 1843276000-9216000000, ticks.AbsDelta, 1)
	assert.Less(t, ticks.RelDelta, 0.0, "cached run must be faster than the baseline")

	insts := table.Rows[1]
	assert.Equal(t, 0.0, insts.AbsDelta, "same workload, same instruction count")
	assert.Equal(t, 0.0, insts.RelDelta)
}

func TestCompare_KeyMissingOnBaseline_Reported(t *testing.T) {
	// Cache counters exist only in the cached run; the comparison must keep
	// the row rather than drop it.
	table := compared(t, []string{"system.cpu.dcache.overallMisses::total"})
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.False(t, row.BaseOK)
	assert.True(t, row.CandOK)
	assert.True(t, math.IsNaN(row.RelDelta))
}

func TestCompare_KeyMissingEverywhere_Reported(t *testing.T) {
	table := compared(t, []string{"system.does.not.exist"})
	require.Len(t, table.Rows, 1)
	assert.False(t, table.Rows[0].BaseOK)
	assert.False(t, table.Rows[0].CandOK)
}

func TestCompare_PreservesKeyOrder(t *testing.T) {
	keys := []string{"simInsts", "simTicks", "simSeconds"}
	table := compared(t, keys)
	for i, row := range table.Rows {
		assert.Equal(t, keys[i], row.Key)
	}
}

func TestRender_AlignedTextTable(t *testing.T) {
	table := compared(t, []string{"simTicks", "system.cpu.dcache.overallMisses::total"})

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "statistic")
	assert.Contains(t, out, "simTicks")
	// Missing baseline side renders as a dash, not an empty cell.
	assert.Contains(t, out, "-")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3) // header + two rows
}

func TestRender_IntegerDeltaStaysIntegral(t *testing.T) {
	table := compared(t, []string{"simInsts"})
	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))
	assert.Contains(t, buf.String(), "+0")
}
