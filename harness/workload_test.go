package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkloadSource_BracketsROIWithM5Ops(t *testing.T) {
	src, err := WorkloadSource(DefaultWorkloadConfig())
	require.NoError(t, err)
	text := string(src)

	// GIVEN the rendered source, the instrumentation calls appear in ROI
	// order: dump+reset at entry, dump at exit, then exit.
	entryDump := strings.Index(text, "m5_dump_stats(0, 0)")
	reset := strings.Index(text, "m5_reset_stats(0, 0)")
	exitDump := strings.LastIndex(text, "m5_dump_stats(0, 0)")
	m5exit := strings.Index(text, "m5_exit(0)")

	require.NotEqual(t, -1, entryDump)
	require.NotEqual(t, -1, reset)
	require.NotEqual(t, -1, m5exit)
	assert.Less(t, entryDump, reset, "entry dump must close the startup block before the reset")
	assert.Less(t, reset, exitDump, "ROI dump must follow the reset")
	assert.Less(t, exitDump, m5exit, "exit must come last")
}

func TestWorkloadSource_ParametersSubstituted(t *testing.T) {
	cfg := WorkloadConfig{ArrayBytes: 4096, Stride: 32, Passes: 3}
	src, err := WorkloadSource(cfg)
	require.NoError(t, err)
	text := string(src)

	assert.Contains(t, text, "#define ARRAY_BYTES (4096)")
	assert.Contains(t, text, "#define STRIDE (32)")
	assert.Contains(t, text, "#define PASSES (3)")
	assert.Contains(t, text, "#include <gem5/m5ops.h>")
}

func TestWorkloadSource_NonPositiveParameters_Rejected(t *testing.T) {
	cases := []WorkloadConfig{
		{ArrayBytes: 0, Stride: 64, Passes: 1},
		{ArrayBytes: 4096, Stride: 0, Passes: 1},
		{ArrayBytes: 4096, Stride: 64, Passes: 0},
	}
	for _, cfg := range cases {
		_, err := WorkloadSource(cfg)
		assert.Error(t, err, "config %+v must be rejected", cfg)
	}
}

func TestWorkloadSource_StrideLargerThanArray_Rejected(t *testing.T) {
	_, err := WorkloadSource(WorkloadConfig{ArrayBytes: 64, Stride: 128, Passes: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not fit")
}

func TestDefaultWorkloadConfig_FitsL2NotL1(t *testing.T) {
	cfg := DefaultWorkloadConfig()
	// 128 KiB sits between the 32kB L1D and the 256kB L2 of the default
	// hierarchy.
	assert.Equal(t, 1<<17, cfg.ArrayBytes)
	assert.NoError(t, cfg.validate())
}
