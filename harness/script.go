package harness

import (
	"bytes"
	"fmt"
	"text/template"
)

// scriptTemplate is the SE-mode configuration script handed to the simulator.
// It only instantiates and wires objects from the simulator's library; all
// timing and coherence behavior belongs to those objects.
//
// createInterruptController() is mandatory for ARM even in SE mode; without
// it the simulator aborts with a fatal before the workload starts.
var scriptTemplate = template.Must(template.New("config").Parse(`# Generated by m5bench. Edit the experiment preset, not this file.
import m5
from m5.objects import *

binary = "{{.Workload}}"

system = System()

system.clk_domain = SrcClockDomain()
system.clk_domain.clock = "{{.System.Clock}}"
system.clk_domain.voltage_domain = VoltageDomain(voltage="{{.System.Voltage}}")

system.mem_mode = "timing"
system.mem_ranges = [AddrRange("{{.System.MemRange}}")]

system.cpu = {{.System.CPUModel}}()
system.membus = SystemXBar()
{{- if .TwoLevel}}


class L1ICache(Cache):
    size = "{{.L1I.Size}}"
    assoc = {{.L1I.Assoc}}
    tag_latency = {{.L1I.TagLatency}}
    data_latency = {{.L1I.DataLatency}}
    response_latency = {{.L1I.ResponseLatency}}
    mshrs = {{.L1I.MSHRs}}
    tgts_per_mshr = {{.L1I.TgtsPerMSHR}}


class L1DCache(Cache):
    size = "{{.L1D.Size}}"
    assoc = {{.L1D.Assoc}}
    tag_latency = {{.L1D.TagLatency}}
    data_latency = {{.L1D.DataLatency}}
    response_latency = {{.L1D.ResponseLatency}}
    mshrs = {{.L1D.MSHRs}}
    tgts_per_mshr = {{.L1D.TgtsPerMSHR}}


class L2Cache(Cache):
    size = "{{.L2.Size}}"
    assoc = {{.L2.Assoc}}
    tag_latency = {{.L2.TagLatency}}
    data_latency = {{.L2.DataLatency}}
    response_latency = {{.L2.ResponseLatency}}
    mshrs = {{.L2.MSHRs}}
    tgts_per_mshr = {{.L2.TgtsPerMSHR}}


system.cpu.icache = L1ICache()
system.cpu.dcache = L1DCache()
system.cpu.icache_port = system.cpu.icache.cpu_side
system.cpu.dcache_port = system.cpu.dcache.cpu_side

system.l2bus = L2XBar()
system.cpu.icache.mem_side = system.l2bus.cpu_side_ports
system.cpu.dcache.mem_side = system.l2bus.cpu_side_ports

system.l2cache = L2Cache()
system.l2cache.cpu_side = system.l2bus.mem_side_ports
system.l2cache.mem_side = system.membus.cpu_side_ports
{{- else}}

system.cpu.icache_port = system.membus.cpu_side_ports
system.cpu.dcache_port = system.membus.cpu_side_ports
{{- end}}

system.cpu.createInterruptController()
system.system_port = system.membus.cpu_side_ports

system.mem_ctrl = {{.System.MemCtrl}}()
system.mem_ctrl.dram = {{.System.DRAMDevice}}()
system.mem_ctrl.dram.range = system.mem_ranges[0]
system.mem_ctrl.port = system.membus.mem_side_ports

system.workload = SEWorkload.init_compatible(binary)

process = Process()
process.cmd = [binary{{range .Args}}, "{{.}}"{{end}}]
system.cpu.workload = process
system.cpu.createThreads()

root = Root(full_system=False, system=system)
m5.instantiate()

print("Beginning simulation!")
exit_event = m5.simulate()
print("Exiting @ tick %i because %s" % (m5.curTick(), exit_event.getCause()))
`))

type scriptData struct {
	*Experiment
	TwoLevel bool
}

// RenderScript produces the simulator configuration script for the
// experiment. The experiment is validated first so the template never sees a
// partial hierarchy.
func RenderScript(exp *Experiment) ([]byte, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	data := scriptData{Experiment: exp, TwoLevel: exp.Hierarchy == HierarchyTwoLevel}
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render config script: %w", err)
	}
	return buf.Bytes(), nil
}
