package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPresets = `
version: "1"
experiments:
  baseline:
    hierarchy: none
    workload: bin/workload
    system:
      isa: ARM
      cpu: TimingSimpleCPU
      clock: 1GHz
      voltage: 1.0V
      mem_range: 512MB
      mem_ctrl: MemCtrl
      dram: DDR3_1600_8x8
  cached:
    hierarchy: two-level
    workload: bin/workload
    system:
      isa: ARM
      cpu: TimingSimpleCPU
      clock: 1GHz
      voltage: 1.0V
      mem_range: 512MB
      mem_ctrl: MemCtrl
      dram: DDR3_1600_8x8
    l1i: {size: 32kB, assoc: 2, tag_latency: 1, data_latency: 1, response_latency: 1, mshrs: 4, tgts_per_mshr: 20}
    l1d: {size: 32kB, assoc: 2, tag_latency: 2, data_latency: 2, response_latency: 2, mshrs: 4, tgts_per_mshr: 20}
    l2:  {size: 256kB, assoc: 8, tag_latency: 20, data_latency: 20, response_latency: 20, mshrs: 20, tgts_per_mshr: 12}
`

func TestParsePresets_Valid_FillsNamesFromKeys(t *testing.T) {
	pf, err := ParsePresets([]byte(goodPresets))
	require.NoError(t, err)

	exp, err := pf.Experiment("baseline")
	require.NoError(t, err)
	assert.Equal(t, "baseline", exp.Name)
	assert.Equal(t, HierarchyNone, exp.Hierarchy)

	cached, err := pf.Experiment("cached")
	require.NoError(t, err)
	require.NotNil(t, cached.L2)
	assert.Equal(t, "256kB", cached.L2.Size)
}

func TestParsePresets_UnknownKey_IsError(t *testing.T) {
	// Typos must cause errors, not silently ignored configuration.
	bad := `
version: "1"
experiments:
  baseline:
    hierarchy: none
    workload: bin/workload
    asociativity: 4
`
	_, err := ParsePresets([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse presets YAML")
}

func TestParsePresets_PartialHierarchy_IsError(t *testing.T) {
	bad := `
version: "1"
experiments:
  cached:
    hierarchy: two-level
    workload: bin/workload
    l2: {size: 256kB, assoc: 8}
`
	_, err := ParsePresets([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires l1i, l1d and l2")
}

func TestPresetFile_UnknownExperiment_ErrorListsAvailable(t *testing.T) {
	pf, err := ParsePresets([]byte(goodPresets))
	require.NoError(t, err)

	_, err = pf.Experiment("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no experiment "nope"`)
}

func TestLoadPresets_MissingFile_IsError(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadPresets_RoundTripFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(goodPresets), 0o644))

	pf, err := LoadPresets(path)
	require.NoError(t, err)
	assert.Len(t, pf.Experiments, 2)
}

func TestDefaultPresets_BothWalkthroughExperiments(t *testing.T) {
	pf := DefaultPresets("bin/workload")

	noCache, err := pf.Experiment("no-cache")
	require.NoError(t, err)
	assert.Equal(t, HierarchyNone, noCache.Hierarchy)
	assert.Equal(t, "bin/workload", noCache.Workload)

	twoLevel, err := pf.Experiment("two-level")
	require.NoError(t, err)
	assert.Equal(t, HierarchyTwoLevel, twoLevel.Hierarchy)
	require.NotNil(t, twoLevel.L1D)
}
