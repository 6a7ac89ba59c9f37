package render

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/hupe1980/qsql"
)

type jsonResult struct {
	Expr      string              `json:"expr"`
	Mode      string              `json:"mode"`
	Threshold float64             `json:"threshold"`
	Mean      float64             `json:"mean"`
	StdDev    float64             `json:"stddev"`
	Batches   int                 `json:"batches"`
	Rows      int                 `json:"rows"`
	ElapsedMS float64             `json:"elapsed_ms"`
	Matches   []map[string]string `json:"matches"`
	Scores    []float64           `json:"scores"`
	Hits      []int               `json:"hits,omitempty"`
}

// JSON writes res as a single JSON document. Matched rows are keyed by
// column name and carry their index and score.
func JSON(w io.Writer, columns []string, res *qsql.Result) error {
	out := jsonResult{
		Expr:      res.Expr,
		Mode:      res.Mode.String(),
		Threshold: jsonFloat(res.Threshold),
		Mean:      res.Mean,
		StdDev:    res.StdDev,
		Batches:   res.Batches,
		Rows:      res.Len(),
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
		Matches:   make([]map[string]string, len(res.Matched)),
		Scores:    res.Scores,
		Hits:      res.Hits,
	}

	for i, row := range res.Matched {
		m := make(map[string]string, len(columns)+2)
		for j, c := range columns {
			if j < len(row) {
				m[c] = row[j]
			}
		}
		idx := res.Indices[i]
		m["_index"] = strconv.Itoa(idx)
		m["_score"] = FormatScore(res.Scores[idx])
		out.Matches[i] = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
