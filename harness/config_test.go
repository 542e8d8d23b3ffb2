package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewL1IParams_FieldEquivalence(t *testing.T) {
	got := NewL1IParams()
	want := CacheParams{
		Size:            "32kB",
		Assoc:           2,
		TagLatency:      1,
		DataLatency:     1,
		ResponseLatency: 1,
		MSHRs:           4,
		TgtsPerMSHR:     20,
	}
	assert.Equal(t, want, got)
}

func TestNewL2Params_FieldEquivalence(t *testing.T) {
	got := NewL2Params()
	want := CacheParams{
		Size:            "256kB",
		Assoc:           8,
		TagLatency:      20,
		DataLatency:     20,
		ResponseLatency: 20,
		MSHRs:           20,
		TgtsPerMSHR:     12,
	}
	assert.Equal(t, want, got)
}

func TestDefaultSystemConfig_ARMSEMachine(t *testing.T) {
	got := DefaultSystemConfig()
	assert.Equal(t, "ARM", got.ISA)
	assert.Equal(t, "TimingSimpleCPU", got.CPUModel)
	assert.Equal(t, "DDR3_1600_8x8", got.DRAMDevice)
}

func TestNewExperiment_TwoLevel_CarriesAllCacheParams(t *testing.T) {
	// GIVEN/WHEN a two-level experiment built from defaults
	exp, err := NewExperiment("two-level", HierarchyTwoLevel, "workload")
	require.NoError(t, err)

	// THEN all three cache parameter sets are present
	require.NotNil(t, exp.L1I)
	require.NotNil(t, exp.L1D)
	require.NotNil(t, exp.L2)
	assert.Equal(t, NewL1IParams(), *exp.L1I)
	assert.Equal(t, NewL2Params(), *exp.L2)
}

func TestNewExperiment_NoCache_CarriesNoCacheParams(t *testing.T) {
	exp, err := NewExperiment("no-cache", HierarchyNone, "workload")
	require.NoError(t, err)
	assert.Nil(t, exp.L1I)
	assert.Nil(t, exp.L1D)
	assert.Nil(t, exp.L2)
}

func TestExperimentValidate_PartialHierarchy_Rejected(t *testing.T) {
	// GIVEN a two-level experiment missing the L2 parameters
	l1i, l1d := NewL1IParams(), NewL1DParams()
	exp := &Experiment{
		Name:      "broken",
		Hierarchy: HierarchyTwoLevel,
		System:    DefaultSystemConfig(),
		L1I:       &l1i,
		L1D:       &l1d,
		Workload:  "workload",
	}

	// THEN validation rejects it
	err := exp.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires l1i, l1d and l2")
}

func TestExperimentValidate_NoCacheWithCacheParams_Rejected(t *testing.T) {
	// Stale cache settings on a no-cache experiment must not be silently ignored.
	l2 := NewL2Params()
	exp := &Experiment{
		Name:      "stale",
		Hierarchy: HierarchyNone,
		System:    DefaultSystemConfig(),
		L2:        &l2,
		Workload:  "workload",
	}
	err := exp.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept cache parameters")
}

func TestExperimentValidate_UnknownHierarchy_Rejected(t *testing.T) {
	exp := &Experiment{Name: "x", Hierarchy: "three-level", Workload: "workload"}
	assert.Error(t, exp.Validate())
}

func TestExperimentValidate_MissingWorkload_Rejected(t *testing.T) {
	exp := &Experiment{Name: "x", Hierarchy: HierarchyNone}
	err := exp.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workload binary")
}
