package harness

import "fmt"

// Hierarchy selects the cache topology handed to the simulator.
type Hierarchy string

const (
	// HierarchyNone connects the CPU ports straight to the memory bus.
	HierarchyNone Hierarchy = "none"
	// HierarchyTwoLevel inserts split L1 caches and a shared L2 behind an L2 crossbar.
	HierarchyTwoLevel Hierarchy = "two-level"
)

// CacheParams parameterizes one pre-built simulator Cache object.
// The simulator owns the replacement and coherence behavior; these are
// only the knobs its Cache class exposes.
type CacheParams struct {
	Size            string `yaml:"size"`             // e.g. "32kB", "256kB"
	Assoc           int    `yaml:"assoc"`            // set associativity
	TagLatency      int    `yaml:"tag_latency"`      // cycles
	DataLatency     int    `yaml:"data_latency"`     // cycles
	ResponseLatency int    `yaml:"response_latency"` // cycles
	MSHRs           int    `yaml:"mshrs"`            // outstanding misses
	TgtsPerMSHR     int    `yaml:"tgts_per_mshr"`    // accesses per outstanding miss
}

// NewL1IParams returns the walkthrough defaults for the L1 instruction cache.
func NewL1IParams() CacheParams {
	return CacheParams{
		Size:            "32kB",
		Assoc:           2,
		TagLatency:      1,
		DataLatency:     1,
		ResponseLatency: 1,
		MSHRs:           4,
		TgtsPerMSHR:     20,
	}
}

// NewL1DParams returns the walkthrough defaults for the L1 data cache.
func NewL1DParams() CacheParams {
	return CacheParams{
		Size:            "32kB",
		Assoc:           2,
		TagLatency:      2,
		DataLatency:     2,
		ResponseLatency: 2,
		MSHRs:           4,
		TgtsPerMSHR:     20,
	}
}

// NewL2Params returns the walkthrough defaults for the shared L2.
func NewL2Params() CacheParams {
	return CacheParams{
		Size:            "256kB",
		Assoc:           8,
		TagLatency:      20,
		DataLatency:     20,
		ResponseLatency: 20,
		MSHRs:           20,
		TgtsPerMSHR:     12,
	}
}

// SystemConfig groups the simulated-machine parameters that are identical
// across hierarchy variants.
type SystemConfig struct {
	ISA        string `yaml:"isa"`       // simulator build target, e.g. "ARM"
	CPUModel   string `yaml:"cpu"`       // e.g. "TimingSimpleCPU"
	Clock      string `yaml:"clock"`     // e.g. "1GHz"
	Voltage    string `yaml:"voltage"`   // e.g. "1.0V"
	MemRange   string `yaml:"mem_range"` // e.g. "512MB"
	MemCtrl    string `yaml:"mem_ctrl"`  // memory controller class, e.g. "MemCtrl"
	DRAMDevice string `yaml:"dram"`      // DRAM interface class, e.g. "DDR3_1600_8x8"
}

// DefaultSystemConfig returns the ARM SE-mode machine used throughout the
// walkthrough.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		ISA:        "ARM",
		CPUModel:   "TimingSimpleCPU",
		Clock:      "1GHz",
		Voltage:    "1.0V",
		MemRange:   "512MB",
		MemCtrl:    "MemCtrl",
		DRAMDevice: "DDR3_1600_8x8",
	}
}

// Experiment is one fully specified simulator invocation: a machine, a cache
// topology, and the workload binary to run on it.
type Experiment struct {
	Name      string       `yaml:"name"`
	Hierarchy Hierarchy    `yaml:"hierarchy"`
	System    SystemConfig `yaml:"system"`
	L1I       *CacheParams `yaml:"l1i,omitempty"`
	L1D       *CacheParams `yaml:"l1d,omitempty"`
	L2        *CacheParams `yaml:"l2,omitempty"`
	Workload  string       `yaml:"workload"`       // path to the cross-compiled binary
	Args      []string     `yaml:"args,omitempty"` // workload argv[1:]
}

// NewExperiment builds a validated experiment for the given hierarchy with
// walkthrough-default cache parameters where the hierarchy needs them.
func NewExperiment(name string, h Hierarchy, workload string) (*Experiment, error) {
	exp := &Experiment{
		Name:      name,
		Hierarchy: h,
		System:    DefaultSystemConfig(),
		Workload:  workload,
	}
	if h == HierarchyTwoLevel {
		l1i, l1d, l2 := NewL1IParams(), NewL1DParams(), NewL2Params()
		exp.L1I, exp.L1D, exp.L2 = &l1i, &l1d, &l2
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return exp, nil
}

// Validate rejects partially specified hierarchies. A two-level experiment
// must carry all three cache parameter sets; a no-cache experiment must carry
// none, so stale cache settings cannot be silently ignored.
func (e *Experiment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("experiment has no name")
	}
	switch e.Hierarchy {
	case HierarchyNone:
		if e.L1I != nil || e.L1D != nil || e.L2 != nil {
			return fmt.Errorf("experiment %q: hierarchy %q does not accept cache parameters", e.Name, e.Hierarchy)
		}
	case HierarchyTwoLevel:
		if e.L1I == nil || e.L1D == nil || e.L2 == nil {
			return fmt.Errorf("experiment %q: hierarchy %q requires l1i, l1d and l2 parameters", e.Name, e.Hierarchy)
		}
	default:
		return fmt.Errorf("experiment %q: unknown hierarchy %q", e.Name, e.Hierarchy)
	}
	if e.Workload == "" {
		return fmt.Errorf("experiment %q: no workload binary configured", e.Name)
	}
	return nil
}
