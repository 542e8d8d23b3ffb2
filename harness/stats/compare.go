package stats

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

// Row is one compared statistic. Keys missing from a side are reported with
// the corresponding OK flag cleared rather than dropped: a counter that
// exists only in the cached run (every cache statistic, against the no-cache
// baseline) is itself part of the comparison.
type Row struct {
	Key      string
	Base     Value
	Cand     Value
	BaseOK   bool
	CandOK   bool
	AbsDelta float64
	RelDelta float64 // (cand-base)/base; NaN when base is zero or either side is missing
}

// Table is an ordered comparison between two statistics blocks.
type Table struct {
	Rows []Row
}

// Compare evaluates the given keys against a baseline and a candidate block.
// Key order is preserved in the output.
func Compare(base, cand *Block, keys []string) *Table {
	t := &Table{Rows: make([]Row, 0, len(keys))}
	for _, key := range keys {
		row := Row{Key: key, RelDelta: math.NaN()}
		row.Base, row.BaseOK = base.Lookup(key)
		row.Cand, row.CandOK = cand.Lookup(key)
		if row.BaseOK && row.CandOK {
			row.AbsDelta = row.Cand.Float - row.Base.Float
			if row.Base.Float != 0 {
				row.RelDelta = row.AbsDelta / row.Base.Float
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Render writes the table as aligned text.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "statistic\tbaseline\tcandidate\tdelta\trel")
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Key, side(r.Base, r.BaseOK), side(r.Cand, r.CandOK), delta(r), rel(r))
	}
	return tw.Flush()
}

func side(v Value, ok bool) string {
	if !ok {
		return "-"
	}
	return v.Raw
}

func delta(r Row) string {
	if !r.BaseOK || !r.CandOK {
		return "-"
	}
	if r.Base.IsInt && r.Cand.IsInt {
		return fmt.Sprintf("%+d", r.Cand.Int-r.Base.Int)
	}
	return fmt.Sprintf("%+g", r.AbsDelta)
}

func rel(r Row) string {
	if math.IsNaN(r.RelDelta) {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", 100*r.RelDelta)
}
