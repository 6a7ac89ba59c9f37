package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qsql/table"
)

func makeRows(n int) []table.Row {
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = table.Row{fmt.Sprint(i)}
	}
	return rows
}

func TestRowQubits(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 1024: 10, 1025: 11}
	for n, want := range cases {
		assert.Equal(t, want, RowQubits(n), "n=%d", n)
	}
}

func TestPartition(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Partition(nil, 4))
	})

	t.Run("ClampsWorkers", func(t *testing.T) {
		assert.Len(t, Partition(makeRows(100), 0), 1)
		assert.Len(t, Partition(makeRows(100), -3), 1)
		assert.Len(t, Partition(makeRows(100), 64), MaxWorkers)
	})

	t.Run("OmitsEmptyTrailingBatches", func(t *testing.T) {
		// 5 rows over 4 workers: size 2, batches [0,2) [2,4) [4,5)
		batches := Partition(makeRows(5), 4)
		require.Len(t, batches, 3)
		assert.Equal(t, 2, batches[0].Len())
		assert.Equal(t, 2, batches[1].Len())
		assert.Equal(t, 1, batches[2].Len())
		assert.Equal(t, 4, batches[2].Offset)
	})

	t.Run("ConcatenationRestoresInput", func(t *testing.T) {
		for n := 1; n <= 40; n++ {
			for w := 1; w <= MaxWorkers; w++ {
				rows := makeRows(n)
				batches := Partition(rows, w)

				var got []table.Row
				for i, b := range batches {
					assert.Equal(t, i, b.ID)
					assert.Equal(t, len(got), b.Offset)
					assert.NotZero(t, b.Len())
					assert.Equal(t, RowQubits(b.Len()), b.Qubits)
					got = append(got, b.Rows...)
				}
				require.Equal(t, rows, got, "n=%d w=%d", n, w)
			}
		}
	})

	t.Run("BatchRowsCannotGrowIntoNeighbour", func(t *testing.T) {
		rows := makeRows(4)
		batches := Partition(rows, 2)
		_ = append(batches[0].Rows, table.Row{"x"})
		assert.Equal(t, table.Row{"2"}, rows[2])
	})
}
