// Package harness drives gem5 cache-hierarchy experiments end to end.
//
// # Reading Guide
//
// Start with these three files to understand the flow:
//   - config.go: Experiment, SystemConfig and CacheParams, plus validation
//   - builder.go: the external build-system and cross-compiler invocations
//   - runner.go: simulator launch, output-directory management, failure mapping
//
// # Architecture
//
// The harness owns none of the simulation: gem5 executes instructions, models
// timing and produces the statistics report. This package renders the
// declarative inputs (config.py via script.go, the instrumented workload via
// workload.go), supervises the external processes, and hands the report to
// sub-packages:
//   - harness/stats: report parsing, ROI extraction, derived metrics, run comparison
//   - harness/archive: durable SQLite record of completed runs
package harness
