// Package stats parses the simulator's fixed-format statistics report and
// derives the quantities the cache study compares. The format is external;
// this package reads it, it never defines it.
package stats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Block delimiters as the simulator emits them. The end marker's interior
// whitespace varies between versions, so matching is prefix-based.
const (
	beginMarkerPrefix = "---------- Begin Simulation Statistics"
	endMarkerPrefix   = "---------- End Simulation Statistics"
)

// DefaultROIBlock is the 1-based index of the block bracketed by the
// workload's instrumentation calls: the dump at ROI entry closes the startup
// counters as block 1, so the ROI lands second.
const DefaultROIBlock = 2

// ErrNoSuchBlock reports a block index beyond what the report contains.
var ErrNoSuchBlock = errors.New("statistics block not present in report")

// Value is one statistics number. The report mixes integer counters with
// float rates; both representations are kept.
type Value struct {
	Raw   string
	Int   int64
	Float float64
	IsInt bool
}

// Line is one parsed statistics line: name, value, trailing description.
type Line struct {
	Name  string
	Value Value
	Desc  string
}

// Block is one Begin/End-delimited group of statistics.
type Block struct {
	Index  int // 1-based position in the report
	Lines  []Line
	byName map[string]int
}

// File is a fully parsed statistics report.
type File struct {
	Blocks []*Block
}

// ParseFile parses the report at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statistics report: %w", err)
	}
	defer f.Close()
	parsed, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

// Parse splits a statistics report into blocks. Lines that do not parse are
// skipped with a debug log: the format belongs to the simulator and newer
// versions add line shapes we do not know about.
func Parse(r io.Reader) (*File, error) {
	file := &File{}
	var cur *Block

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, beginMarkerPrefix):
			cur = &Block{Index: len(file.Blocks) + 1, byName: make(map[string]int)}
			file.Blocks = append(file.Blocks, cur)
		case strings.HasPrefix(line, endMarkerPrefix):
			cur = nil
		case cur != nil:
			parsed, ok := parseLine(line)
			if !ok {
				logrus.Debugf("stats: skipping unparsable line in block %d: %q", cur.Index, line)
				continue
			}
			cur.byName[parsed.Name] = len(cur.Lines)
			cur.Lines = append(cur.Lines, parsed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read statistics report: %w", err)
	}
	if len(file.Blocks) == 0 {
		return nil, errors.New("no statistics blocks in report")
	}
	return file, nil
}

// parseLine splits "name value [# description]". Values are int64 where
// possible, float64 otherwise (scientific notation, nan and inf included).
func parseLine(line string) (Line, bool) {
	body, desc, _ := strings.Cut(line, "#")
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return Line{}, false
	}
	v, ok := parseValue(fields[1])
	if !ok {
		return Line{}, false
	}
	return Line{Name: fields[0], Value: v, Desc: strings.TrimSpace(desc)}, true
}

func parseValue(raw string) (Value, bool) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Raw: raw, Int: i, Float: float64(i), IsInt: true}, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Raw: raw, Float: f}, true
	}
	return Value{}, false
}

// Block returns the 1-based i-th block.
func (f *File) Block(i int) (*Block, error) {
	if i < 1 || i > len(f.Blocks) {
		return nil, fmt.Errorf("%w: want block %d, report has %d", ErrNoSuchBlock, i, len(f.Blocks))
	}
	return f.Blocks[i-1], nil
}

// ROI returns the block bracketed by the workload's instrumentation calls.
func (f *File) ROI() (*Block, error) {
	return f.Block(DefaultROIBlock)
}

// Lookup returns the named statistic.
func (b *Block) Lookup(name string) (Value, bool) {
	i, ok := b.byName[name]
	if !ok {
		return Value{}, false
	}
	return b.Lines[i].Value, true
}

// Len returns the number of parsed lines in the block.
func (b *Block) Len() int {
	return len(b.Lines)
}
