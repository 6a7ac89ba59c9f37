package scoring

import (
	"errors"
	"fmt"

	"github.com/hupe1980/qsql/expr"
	"github.com/hupe1980/qsql/table"
)

var (
	// ErrMode is returned for an unknown or unusable mode.
	ErrMode = errors.New("invalid scoring mode")
	// ErrTooWide is returned when an expression needs more circuit units
	// than allowed.
	ErrTooWide = errors.New("expression too wide")
)

// RowError reports a field that could not be evaluated.
type RowError struct {
	// Row is the index of the row in the query input.
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Plan is an expression bound to a schema.
type Plan struct {
	expr   *expr.Expression
	leaves []expr.Leaf
	// pos maps every referenced column, as written in the expression, to
	// its field index.
	pos map[string]int
	// leafPos is the field index of each leaf.
	leafPos []int
}

// NewPlan binds e to schema. Every referenced column must exist.
func NewPlan(e *expr.Expression, schema *table.Schema) (*Plan, error) {
	p := &Plan{
		expr:   e,
		leaves: expr.Leaves(e.Root),
		pos:    make(map[string]int),
	}

	for _, col := range expr.Columns(e.Root) {
		i, err := schema.Index(col)
		if err != nil {
			return nil, err
		}
		p.pos[col] = i
	}

	p.leafPos = make([]int, len(p.leaves))
	for i, l := range p.leaves {
		p.leafPos[i] = p.pos[l.Column()]
	}

	return p, nil
}

// Expression returns the bound expression.
func (p *Plan) Expression() *expr.Expression { return p.expr }

// Leaves returns the leaf tests in circuit order.
func (p *Plan) Leaves() []expr.Leaf { return p.leaves }

// Units returns the number of circuit units, one per leaf.
func (p *Plan) Units() int { return len(p.leaves) }

// CheckUnits fails with ErrTooWide when the plan needs more than limit units.
func (p *Plan) CheckUnits(limit int) error {
	if limit > 0 && p.Units() > limit {
		return fmt.Errorf("%w: %d units, limit %d", ErrTooWide, p.Units(), limit)
	}
	return nil
}

func (p *Plan) lookup(row table.Row) expr.Lookup {
	return func(column string) (string, error) {
		i, ok := p.pos[column]
		if !ok || i >= len(row) {
			return "", fmt.Errorf("%w: %q", table.ErrUnknownColumn, column)
		}
		return row[i], nil
	}
}

// Eval evaluates the filter classically on row.
func (p *Plan) Eval(row table.Row) (bool, error) {
	return expr.Eval(p.expr.Root, p.lookup(row))
}

// Literals writes the polarity-adjusted outcome of every leaf into dst and
// returns it. dst is grown when too short.
func (p *Plan) Literals(row table.Row, dst []bool) ([]bool, error) {
	if cap(dst) < len(p.leaves) {
		dst = make([]bool, len(p.leaves))
	}
	dst = dst[:len(p.leaves)]

	lookup := p.lookup(row)
	for i, l := range p.leaves {
		v, err := expr.Literal(l, lookup)
		if err != nil {
			return nil, err
		}
		dst[i] = v
	}
	return dst, nil
}

// Pattern packs the literals of row into a bit pattern, leaf i at bit i.
func (p *Plan) Pattern(row table.Row) (uint32, error) {
	var pattern uint32
	lookup := p.lookup(row)
	for i, l := range p.leaves {
		v, err := expr.Literal(l, lookup)
		if err != nil {
			return 0, err
		}
		if v {
			pattern |= 1 << uint(i)
		}
	}
	return pattern, nil
}
