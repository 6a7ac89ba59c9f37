// Package render prints query results as tables and exports score vectors.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hupe1980/qsql"
	tbl "github.com/hupe1980/qsql/table"
)

// Table writes the matched rows of res with their scores as a table,
// followed by a one-line summary. At most limit rows are shown; limit <= 0
// shows all of them.
func Table(w io.Writer, columns []string, res *qsql.Result, limit int) {
	t := newWriter(w)

	header := make(table.Row, 0, len(columns)+2)
	header = append(header, "#")
	for _, c := range columns {
		header = append(header, c)
	}
	header = append(header, "score")
	t.AppendHeader(header)

	rows := make([]table.Row, len(res.Matched))
	for i, row := range res.Matched {
		idx := res.Indices[i]
		r := make(table.Row, 0, len(row)+2)
		r = append(r, idx)
		for _, v := range row {
			r = append(r, v)
		}
		r = append(r, FormatScore(res.Scores[idx]))
		rows[i] = r
	}
	appendTruncated(t, rows, len(header), limit)

	t.Render()
	fmt.Fprintln(w, Summary(res))
}

// Rows writes plain rows without scores, as returned by a query with no
// condition.
func Rows(w io.Writer, columns []string, rows []tbl.Row, limit int) {
	t := newWriter(w)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)

	out := make([]table.Row, len(rows))
	for i, row := range rows {
		out[i] = convertRow(row)
	}
	appendTruncated(t, out, len(columns), limit)

	t.Render()
	fmt.Fprintf(w, "%d row(s)\n", len(rows))
}

// Summary describes a result in one line.
func Summary(res *qsql.Result) string {
	return fmt.Sprintf("%d of %d row(s) matched (mode=%s threshold=%s batches=%d) in %v",
		len(res.Indices), res.Len(), res.Mode, FormatScore(res.Threshold), res.Batches, res.Elapsed)
}

// FormatScore formats a score with six significant digits.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// jsonFloat maps the infinite threshold of an all-zero result to zero,
// which JSON can represent.
func jsonFloat(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetAutoIndex(false)
	t.Style().Options.SeparateRows = false
	return t
}

// appendTruncated appends rows, replacing the middle with a spanning note
// when there are more than limit.
func appendTruncated(t table.Writer, rows []table.Row, width, limit int) {
	if limit <= 0 || len(rows) <= limit {
		for _, r := range rows {
			t.AppendRow(r)
		}
		return
	}

	top := limit / 2
	bottom := limit - top
	for _, r := range rows[:top] {
		t.AppendRow(r)
	}

	note := make(table.Row, width)
	for i := range note {
		note[i] = fmt.Sprintf("... (%d more rows) ...", len(rows)-limit)
	}
	t.AppendRow(note, table.RowConfig{AutoMerge: true})

	for _, r := range rows[len(rows)-bottom:] {
		t.AppendRow(r)
	}
}

func convertRow(row tbl.Row) table.Row {
	out := make(table.Row, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
