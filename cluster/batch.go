package cluster

import (
	"math/bits"

	"github.com/hupe1980/qsql/table"
)

// MaxWorkers is the upper bound on batches per query.
const MaxWorkers = 8

// Batch is a contiguous slice of the input rows.
type Batch struct {
	// ID is the position of the batch; results are concatenated in ID order.
	ID int
	// Offset is the index of the first row of the batch in the input.
	Offset int
	// Rows is the read-only row slice.
	Rows []table.Row
	// Qubits is the resource budget of the batch, ceil(log2(len(Rows))).
	Qubits int
}

// Len returns the number of rows in the batch.
func (b Batch) Len() int { return len(b.Rows) }

// RowQubits returns ceil(log2(n)), at least 1.
func RowQubits(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Partition splits rows into at most workers near-equal contiguous batches.
//
// workers is clamped to [1, MaxWorkers]. Batches are in increasing row
// order, batch IDs equal their position, and trailing empty batches are
// omitted. Concatenating the batch rows in ID order yields rows.
func Partition(rows []table.Row, workers int) []Batch {
	if len(rows) == 0 {
		return nil
	}
	workers = max(1, min(workers, MaxWorkers))

	size := (len(rows) + workers - 1) / workers
	batches := make([]Batch, 0, workers)
	for i := 0; i < workers; i++ {
		lo := i * size
		if lo >= len(rows) {
			break
		}
		hi := min(lo+size, len(rows))
		batches = append(batches, Batch{
			ID:     i,
			Offset: lo,
			Rows:   rows[lo:hi:hi],
			Qubits: RowQubits(hi - lo),
		})
	}
	return batches
}
