package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// ErrBinaryNotFound wraps a missing simulator or workload binary, detected
// before the simulator is launched.
var ErrBinaryNotFound = errors.New("binary not found")

// RunResult describes one completed simulator invocation.
type RunResult struct {
	ID         string        // unique run identifier
	Experiment string        // experiment name
	OutDir     string        // directory the simulator wrote into
	ScriptPath string        // rendered configuration script
	StatsPath  string        // statistics report inside OutDir
	WallTime   time.Duration // host-side wall time of the simulation
	ExitCode   int
}

// Runner launches the simulator binary against rendered experiment scripts.
type Runner struct {
	Gem5Bin string // simulator binary, e.g. build/ARM/gem5.opt
	WorkDir string // directory the simulator is launched from
}

// NewRunner returns a Runner for the given simulator binary.
func NewRunner(gem5Bin, workDir string) *Runner {
	return &Runner{Gem5Bin: gem5Bin, WorkDir: workDir}
}

// statsFileName is fixed by the simulator.
const statsFileName = "stats.txt"

// strayOutDir is where the simulator writes when the outdir flag is absent.
const strayOutDir = "m5out"

// Run renders the experiment's configuration script into outdir and launches
// the simulator with an explicit outdir flag. Missing binaries are reported
// as ErrBinaryNotFound before anything is executed.
func (r *Runner) Run(ctx context.Context, exp *Experiment, outdir string) (*RunResult, error) {
	if err := checkBinary("simulator", r.Gem5Bin); err != nil {
		return nil, err
	}
	if err := checkBinary("workload", exp.Workload); err != nil {
		return nil, err
	}

	script, err := RenderScript(exp)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	scriptPath := filepath.Join(outdir, "config.py")
	if err := os.WriteFile(scriptPath, script, 0o644); err != nil {
		return nil, fmt.Errorf("write config script: %w", err)
	}

	res := &RunResult{
		ID:         xid.New().String(),
		Experiment: exp.Name,
		OutDir:     outdir,
		ScriptPath: scriptPath,
		StatsPath:  filepath.Join(outdir, statsFileName),
	}

	// The outdir flag is always passed; without it the simulator falls back
	// to a fixed m5out/ next to the working directory.
	cmd := exec.CommandContext(ctx, r.Gem5Bin, "--outdir="+outdir, scriptPath)
	cmd.Dir = r.WorkDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attach simulator stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	logrus.Infof("Run %s: experiment=%s outdir=%s", res.ID, exp.Name, outdir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch simulator: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var fatal string
	for scanner.Scan() {
		line := scanner.Text()
		logrus.Debugf("gem5: %s", line)
		if strings.HasPrefix(line, "fatal:") || strings.HasPrefix(line, "panic:") {
			fatal = line
		}
	}

	err = cmd.Wait()
	res.WallTime = time.Since(start)
	res.ExitCode = cmd.ProcessState.ExitCode()

	r.warnStrayOutDir(outdir)

	if err != nil {
		if fatal != "" {
			return res, fmt.Errorf("simulator failed: %s%s", fatal, remediation(fatal))
		}
		return res, fmt.Errorf("simulator exited with status %d: %w", res.ExitCode, err)
	}

	if _, statErr := os.Stat(res.StatsPath); statErr != nil {
		return res, fmt.Errorf("simulation finished but no report at %s: %w", res.StatsPath, statErr)
	}
	logrus.Infof("Run %s complete in %s, report at %s", res.ID, res.WallTime.Round(time.Millisecond), res.StatsPath)
	return res, nil
}

// warnStrayOutDir flags a default m5out/ directory left next to the working
// directory. The runner always passes the outdir flag, so such a directory
// is stale output from an unmanaged invocation.
func (r *Runner) warnStrayOutDir(outdir string) {
	stray := filepath.Join(r.WorkDir, strayOutDir)
	abs, err := filepath.Abs(stray)
	if err != nil {
		return
	}
	wanted, err := filepath.Abs(outdir)
	if err != nil || abs == wanted {
		return
	}
	if st, err := os.Stat(stray); err == nil && st.IsDir() {
		logrus.Warnf("Stray %s/ found at %s; it was not written by this run and its report may be stale", strayOutDir, abs)
	}
}

// remediation maps known simulator fatals to the config fix.
func remediation(fatal string) string {
	if strings.Contains(strings.ToLower(fatal), "interrupt controller") {
		return " (the configuration script must call cpu.createInterruptController() for ARM)"
	}
	return ""
}

func checkBinary(role, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s binary %q", ErrBinaryNotFound, role, path)
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s path %q is a directory", ErrBinaryNotFound, role, path)
	}
	return nil
}
