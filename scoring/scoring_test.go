package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/expr"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/table"
)

func mustPlan(t *testing.T, cond string, columns ...string) *Plan {
	t.Helper()
	e, err := expr.Compile(cond, false)
	require.NoError(t, err)
	schema, err := table.NewSchema(columns)
	require.NoError(t, err)
	p, err := NewPlan(e, schema)
	require.NoError(t, err)
	return p
}

func batchOf(rows ...table.Row) cluster.Batch {
	return cluster.Batch{ID: 0, Rows: rows, Qubits: cluster.RowQubits(len(rows))}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAuto, ModeDeterministic, ModeStatevector, ModeAccelerated, ModeSparse} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("gpu")
	assert.ErrorIs(t, err, ErrMode)
}

func TestSelectMode(t *testing.T) {
	yes := func() bool { return true }
	no := func() bool { return false }

	assert.Equal(t, ModeAccelerated, SelectMode(10, DefaultBudget, yes))
	assert.Equal(t, ModeStatevector, SelectMode(10, DefaultBudget, no))
	assert.Equal(t, ModeStatevector, SelectMode(10, DefaultBudget, nil))

	// 2^24 rows need 24 row qubits, plus 4 overhead is exactly the limit.
	assert.Equal(t, ModeStatevector, SelectMode(1<<24, DefaultBudget, no))
	assert.Equal(t, ModeSparse, SelectMode(1<<24+1, DefaultBudget, yes))

	// An overhead of 32 always exceeds a limit of 28.
	assert.Equal(t, ModeSparse, SelectMode(1, Budget{Overhead: 32, Limit: 28}, yes))
}

func TestNewPlan(t *testing.T) {
	t.Run("UnknownColumn", func(t *testing.T) {
		e, err := expr.Compile("a and missing", false)
		require.NoError(t, err)
		schema, err := table.NewSchema([]string{"a"})
		require.NoError(t, err)

		_, err = NewPlan(e, schema)
		var ce *table.ColumnError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "missing", ce.Column)
		assert.ErrorIs(t, err, table.ErrUnknownColumn)
	})

	t.Run("Literals", func(t *testing.T) {
		p := mustPlan(t, "not (a and bp > 100)", "bp", "a")
		assert.Equal(t, 2, p.Units())

		truth, err := p.Literals(table.Row{"150", "true"}, nil)
		require.NoError(t, err)
		// Both leaves hold but sit under a NOT.
		assert.Equal(t, []bool{false, false}, truth)

		pattern, err := p.Pattern(table.Row{"50", "false"})
		require.NoError(t, err)
		assert.Equal(t, uint32(0b11), pattern)
	})

	t.Run("CheckUnits", func(t *testing.T) {
		p := mustPlan(t, "a and a and a", "a")
		assert.NoError(t, p.CheckUnits(3))
		assert.ErrorIs(t, p.CheckUnits(2), ErrTooWide)
		assert.NoError(t, p.CheckUnits(0))
	})
}

func TestNew(t *testing.T) {
	p := mustPlan(t, "a", "a")

	_, err := New(ModeAuto, p, Config{})
	assert.ErrorIs(t, err, ErrMode)

	for _, m := range []Mode{ModeDeterministic, ModeStatevector, ModeAccelerated, ModeSparse} {
		s, err := New(m, p, Config{})
		require.NoError(t, err)
		assert.Equal(t, m, s.Mode())
	}

	wide := mustPlan(t, "a and a and a", "a")
	_, err = New(ModeStatevector, wide, Config{MaxUnits: 2})
	assert.ErrorIs(t, err, ErrTooWide)
	_, err = New(ModeSparse, wide, Config{MaxUnits: 2})
	assert.NoError(t, err)
}

func TestDeterministic(t *testing.T) {
	p := mustPlan(t, "bp > 100 and diabetic", "name", "bp", "diabetic")
	s, err := New(ModeDeterministic, p, Config{})
	require.NoError(t, err)

	scores, err := s.Score(context.Background(), batchOf(
		table.Row{"P1", "150", "true"},
		table.Row{"P2", "90", "true"},
		table.Row{"P3", "140", "false"},
	))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, scores)
}

func TestStatevector(t *testing.T) {
	t.Run("SingleUnitIsTruth", func(t *testing.T) {
		p := mustPlan(t, "x > 0", "x")
		for _, m := range []Mode{ModeStatevector, ModeAccelerated} {
			s, err := New(m, p, Config{})
			require.NoError(t, err)
			scores, err := s.Score(context.Background(), batchOf(table.Row{"1"}, table.Row{"-1"}))
			require.NoError(t, err)
			assert.InDelta(t, 1.0, scores[0], 1e-12, m.String())
			assert.InDelta(t, 0.0, scores[1], 1e-12, m.String())
		}
	})

	t.Run("MonotoneInSatisfiedLiterals", func(t *testing.T) {
		for units := 2; units <= 6; units++ {
			cols := make([]string, units)
			cond := ""
			for i := range cols {
				cols[i] = fmt.Sprintf("c%d", i)
				if i > 0 {
					cond += " and "
				}
				cond += cols[i]
			}
			p := mustPlan(t, cond, cols...)
			s, err := New(ModeStatevector, p, Config{})
			require.NoError(t, err)

			// Row k satisfies the first k literals.
			rows := make([]table.Row, units+1)
			for k := range rows {
				row := make(table.Row, units)
				for i := range row {
					row[i] = fmt.Sprint(i < k)
				}
				rows[k] = row
			}

			scores, err := s.Score(context.Background(), batchOf(rows...))
			require.NoError(t, err)
			for k := 1; k < len(scores); k++ {
				assert.Greater(t, scores[k], scores[k-1], "units=%d k=%d", units, k)
			}
		}
	})

	t.Run("AcceleratedMatchesDirect", func(t *testing.T) {
		p := mustPlan(t, "a and not b or c > 2 and d", "a", "b", "c", "d")
		direct, err := New(ModeStatevector, p, Config{})
		require.NoError(t, err)
		fused, err := New(ModeAccelerated, p, Config{})
		require.NoError(t, err)

		var rows []table.Row
		for x := 0; x < 16; x++ {
			rows = append(rows, table.Row{
				fmt.Sprint(x&1 != 0), fmt.Sprint(x&2 != 0), fmt.Sprint(x >> 2 & 3 * 2), fmt.Sprint(x&8 != 0),
			})
		}
		rows = append(rows, rows...)

		want, err := direct.Score(context.Background(), batchOf(rows...))
		require.NoError(t, err)
		got, err := fused.Score(context.Background(), batchOf(rows...))
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12)
	})

	t.Run("ValueErrorCarriesRow", func(t *testing.T) {
		p := mustPlan(t, "bp > 100", "bp")
		s, err := New(ModeStatevector, p, Config{})
		require.NoError(t, err)

		b := batchOf(table.Row{"120"}, table.Row{"high"})
		b.Offset = 10
		_, err = s.Score(context.Background(), b)

		var re *RowError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, 11, re.Row)
		var ve *expr.ValueError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("MemoryAccounting", func(t *testing.T) {
		p := mustPlan(t, "a and b", "a", "b")
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 32})
		s, err := New(ModeStatevector, p, Config{Resources: rc})
		require.NoError(t, err)

		_, err = s.Score(context.Background(), batchOf(table.Row{"1", "0"}))
		assert.ErrorIs(t, err, resource.ErrOverLimit)

		rc = resource.NewController(resource.Config{MemoryLimitBytes: 64})
		s, err = New(ModeAccelerated, p, Config{Resources: rc})
		require.NoError(t, err)
		_, err = s.Score(context.Background(), batchOf(table.Row{"1", "0"}))
		require.NoError(t, err)
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("Cancelled", func(t *testing.T) {
		p := mustPlan(t, "a", "a")
		s, err := New(ModeStatevector, p, Config{})
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = s.Score(ctx, batchOf(table.Row{"1"}))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSparse(t *testing.T) {
	p := mustPlan(t, "a", "a")
	rows := make([]table.Row, 200)
	for i := range rows {
		rows[i] = table.Row{"1"}
	}

	s, err := New(ModeSparse, p, Config{Seed: 7})
	require.NoError(t, err)

	scores, err := s.Score(context.Background(), batchOf(rows...))
	require.NoError(t, err)

	var sum float64
	for _, v := range scores {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	again, err := s.Score(context.Background(), batchOf(rows...))
	require.NoError(t, err)
	assert.Equal(t, scores, again)

	other, err := New(ModeSparse, p, Config{Seed: 8})
	require.NoError(t, err)
	different, err := other.Score(context.Background(), batchOf(rows...))
	require.NoError(t, err)
	assert.NotEqual(t, scores, different)

	_, err = s.Score(context.Background(), batchOf(table.Row{"maybe"}))
	var re *RowError
	assert.ErrorAs(t, err, &re)
}
