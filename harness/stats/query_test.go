package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roiBlock(t *testing.T) *Block {
	t.Helper()
	f, err := Parse(strings.NewReader(sampleReport))
	require.NoError(t, err)
	roi, err := f.ROI()
	require.NoError(t, err)
	return roi
}

func TestMatch_SubtreeGlob(t *testing.T) {
	roi := roiBlock(t)

	lines, err := roi.Match("system.cpu.dcache*")
	require.NoError(t, err)
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l.Name, "system.cpu.dcache"))
	}
}

func TestMatch_NoHit_ReturnsNil(t *testing.T) {
	roi := roiBlock(t)
	lines, err := roi.Match("system.gpu*")
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestMatch_MalformedPattern_IsError(t *testing.T) {
	// A bad pattern must be distinguishable from zero hits.
	roi := roiBlock(t)
	_, err := roi.Match("system.[cpu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"system.[cpu"`)
}

func TestMissRate_DerivedFromRawCounters(t *testing.T) {
	roi := roiBlock(t)

	rate, err := MissRate(roi, "system.cpu.dcache")
	require.NoError(t, err)
	assert.InDelta(t, 0.125, rate, 1e-9)

	// Matches the simulator's own reported rate.
	reported, ok := roi.Lookup("system.cpu.dcache.overallMissRate::total")
	require.True(t, ok)
	assert.InDelta(t, reported.Float, rate, 1e-9)
}

func TestMissRate_L2(t *testing.T) {
	roi := roiBlock(t)
	rate, err := MissRate(roi, "system.l2cache")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/2048.0, rate, 1e-9)
}

func TestMissRate_MissingCounters_IsError(t *testing.T) {
	roi := roiBlock(t)
	// The no-cache baseline has no icache statistics at all.
	_, err := MissRate(roi, "system.cpu.icache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overallMisses::total")
}

func TestMissRate_ZeroAccesses_IsError(t *testing.T) {
	report := `
---------- Begin Simulation Statistics ----------
c.overallMisses::total 0 # misses
c.overallAccesses::total 0 # accesses
---------- End Simulation Statistics   ----------
`
	f, err := Parse(strings.NewReader(report))
	require.NoError(t, err)

	_, err = MissRate(f.Blocks[0], "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero accesses")
}

func TestDefaultCompareKeys_CoverAllCachePrefixes(t *testing.T) {
	joined := strings.Join(DefaultCompareKeys, " ")
	for _, prefix := range CachePrefixes {
		assert.Contains(t, joined, prefix)
	}
}
