package stats

import (
	"fmt"
	"path"
)

// Match returns the block's lines whose names match the glob pattern, in
// report order. Hierarchical names ("system.cpu.dcache.overallHits::total")
// are matched as flat strings, so "system.cpu.dcache.*" works as expected
// only for single-segment tails; use "system.cpu.dcache*" for whole
// subtrees. A malformed pattern is an error, not zero hits.
func (b *Block) Match(pattern string) ([]Line, error) {
	var out []Line
	for _, l := range b.Lines {
		ok, err := path.Match(pattern, l.Name)
		if err != nil {
			return nil, fmt.Errorf("match pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// MissRate derives misses/accesses for one cache from its overall counters,
// e.g. prefix "system.cpu.dcache". The simulator reports its own miss-rate
// statistic too; deriving it from the raw counters keeps the calculation
// honest when comparing reports from different simulator versions.
func MissRate(b *Block, prefix string) (float64, error) {
	misses, ok := b.Lookup(prefix + ".overallMisses::total")
	if !ok {
		return 0, fmt.Errorf("no %s.overallMisses::total in block %d", prefix, b.Index)
	}
	accesses, ok := b.Lookup(prefix + ".overallAccesses::total")
	if !ok {
		return 0, fmt.Errorf("no %s.overallAccesses::total in block %d", prefix, b.Index)
	}
	if accesses.Float == 0 {
		return 0, fmt.Errorf("%s reports zero accesses in block %d", prefix, b.Index)
	}
	return misses.Float / accesses.Float, nil
}

// CachePrefixes are the hierarchy components of the two-level study, as the
// generated configuration script names them.
var CachePrefixes = []string{
	"system.cpu.icache",
	"system.cpu.dcache",
	"system.l2cache",
}

// DefaultCompareKeys are the quantities the walkthrough compares between the
// no-cache and two-level runs.
var DefaultCompareKeys = []string{
	"simSeconds",
	"simTicks",
	"simInsts",
	"system.cpu.numCycles",
	"system.cpu.icache.overallHits::total",
	"system.cpu.icache.overallMisses::total",
	"system.cpu.icache.overallMissRate::total",
	"system.cpu.dcache.overallHits::total",
	"system.cpu.dcache.overallMisses::total",
	"system.cpu.dcache.overallMissRate::total",
	"system.l2cache.overallHits::total",
	"system.l2cache.overallMisses::total",
	"system.l2cache.overallMissRate::total",
	"system.mem_ctrl.bytesRead::total",
}
