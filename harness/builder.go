package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrToolNotFound wraps a missing external binary (scons, the cross compiler,
// the simulator). Callers match it with errors.Is.
var ErrToolNotFound = errors.New("required tool not found")

// Toolchain names the external binaries the builder drives.
type Toolchain struct {
	Scons    string `yaml:"scons"`     // build tool, default "scons"
	CrossGCC string `yaml:"cross_gcc"` // cross compiler, default "aarch64-linux-gnu-gcc"
	Jobs     int    `yaml:"jobs"`      // parallel build jobs, default NumCPU

	// DisableBranchProtection adds -mbranch-protection=none to workload
	// compiles. The simulated CPU has no pointer-authentication support, so
	// leaving the default protection on produces instructions it rejects.
	DisableBranchProtection bool `yaml:"disable_branch_protection"`
}

// DefaultToolchain returns the toolchain the walkthrough uses.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Scons:                   "scons",
		CrossGCC:                "aarch64-linux-gnu-gcc",
		Jobs:                    runtime.NumCPU(),
		DisableBranchProtection: true,
	}
}

// Builder runs the external build system against a simulator checkout.
type Builder struct {
	Gem5Dir string // root of the simulator source checkout
	Tool    Toolchain
}

// NewBuilder returns a Builder for the checkout at gem5Dir.
func NewBuilder(gem5Dir string, tc Toolchain) *Builder {
	if tc.Scons == "" {
		tc.Scons = "scons"
	}
	if tc.CrossGCC == "" {
		tc.CrossGCC = "aarch64-linux-gnu-gcc"
	}
	if tc.Jobs <= 0 {
		tc.Jobs = runtime.NumCPU()
	}
	return &Builder{Gem5Dir: gem5Dir, Tool: tc}
}

// Gem5Binary returns the path the build target produces for an ISA.
func (b *Builder) Gem5Binary(isa string) string {
	return filepath.Join(b.Gem5Dir, "build", isa, "gem5.opt")
}

// M5OpsDir returns the output directory of the m5 ops library build for a
// target ABI ("arm64" in the walkthrough).
func (b *Builder) M5OpsDir(abi string) string {
	return filepath.Join(b.Gem5Dir, "util", "m5", "build", abi, "out")
}

// BuildGem5 builds the simulator binary for the given ISA and returns its
// path. The build is the external tool's job; only its invocation and exit
// status are ours.
func (b *Builder) BuildGem5(ctx context.Context, isa string) (string, error) {
	if err := lookPath(b.Tool.Scons); err != nil {
		return "", err
	}
	target := filepath.Join("build", isa, "gem5.opt")
	logrus.Infof("Building simulator target %s (this takes a while)", target)
	if err := b.runCommand(ctx, b.Gem5Dir, b.Tool.Scons, target, fmt.Sprintf("-j%d", b.Tool.Jobs)); err != nil {
		return "", err
	}
	return b.Gem5Binary(isa), nil
}

// BuildM5Ops builds libm5.a for the target ABI and returns the directory
// holding the library.
func (b *Builder) BuildM5Ops(ctx context.Context, abi string) (string, error) {
	if err := lookPath(b.Tool.Scons); err != nil {
		return "", err
	}
	m5Dir := filepath.Join(b.Gem5Dir, "util", "m5")
	target := filepath.Join("build", abi, "out", "m5")
	logrus.Infof("Building m5 ops library for %s", abi)
	if err := b.runCommand(ctx, m5Dir, b.Tool.Scons, target); err != nil {
		return "", err
	}
	return b.M5OpsDir(abi), nil
}

// CompileWorkload cross-compiles the instrumented workload source into a
// static binary linked against libm5.
func (b *Builder) CompileWorkload(ctx context.Context, abi, src, out string) error {
	if err := lookPath(b.Tool.CrossGCC); err != nil {
		return err
	}
	args := []string{
		"-O2",
		"-static",
		"-I", filepath.Join(b.Gem5Dir, "include"),
		"-L", b.M5OpsDir(abi),
	}
	if b.Tool.DisableBranchProtection {
		args = append(args, "-mbranch-protection=none")
	}
	args = append(args, "-o", out, src, "-lm5")
	logrus.Infof("Cross-compiling %s -> %s", src, out)
	return b.runCommand(ctx, "", b.Tool.CrossGCC, args...)
}

// runCommand runs an external command, forwarding its stdout to the debug
// log and keeping a stderr tail for the error message.
func (b *Builder) runCommand(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logrus.Debugf("exec: %s %s (dir=%s)", name, strings.Join(args, " "), dir)
	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		logrus.Debug(out)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, stderrTail(stderr.String(), 10))
	}
	return nil
}

// stderrTail keeps the last n lines of captured stderr. Build tools bury
// the actual failure at the bottom of long logs.
func stderrTail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func lookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %q is not on PATH", ErrToolNotFound, name)
	}
	return nil
}
