// Package dataset provides the named-column table handed to the
// discretizer and the rule-list backend.
//
// A Table is a fixed-row-count collection of named columns, each either
// numeric (float64) or categorical (string). Column types are part of the
// table's schema, so feature selection is driven by declared types rather
// than by inspecting values at runtime.
package dataset

import (
	"strconv"

	"github.com/skater-ml/brlc/pkg/errors"
)

// ColumnType tags the semantic type of a column.
type ColumnType int

const (
	// Numeric marks a continuous float64 column.
	Numeric ColumnType = iota
	// Categorical marks a discrete string-labeled column.
	Categorical
)

// String returns the name of the column type.
func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// column holds one named column. Exactly one of floats/strings is set,
// according to typ.
type column struct {
	name    string
	typ     ColumnType
	floats  []float64
	strings []string
}

func (c *column) length() int {
	if c.typ == Numeric {
		return len(c.floats)
	}
	return len(c.strings)
}

// Table is an immutable collection of equal-length named columns. Column
// names are unique; column order is preserved. All builder methods return a
// new Table and never mutate the receiver.
type Table struct {
	cols  []*column
	index map[string]int
	rows  int
}

// NewTable creates an empty table with a fixed row count. Columns appended
// later must match rows exactly.
func NewTable(rows int) *Table {
	return &Table{index: make(map[string]int), rows: rows}
}

// NumRows returns the number of rows shared by all columns.
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Type returns the declared type of a column.
func (t *Table) Type(name string) (ColumnType, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, errors.NewInvalidArgumentError("Table.Type", "no such column", name)
	}
	return t.cols[i].typ, nil
}

// Numeric returns the values of a numeric column. The returned slice is a
// copy; modifying it does not affect the table.
func (t *Table) Numeric(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewInvalidArgumentError("Table.Numeric", "no such column", name)
	}
	c := t.cols[i]
	if c.typ != Numeric {
		return nil, errors.NewInvalidArgumentError("Table.Numeric", "column is not numeric", name)
	}
	out := make([]float64, len(c.floats))
	copy(out, c.floats)
	return out, nil
}

// Categorical returns the values of a categorical column as a copy.
func (t *Table) Categorical(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewInvalidArgumentError("Table.Categorical", "no such column", name)
	}
	c := t.cols[i]
	if c.typ != Categorical {
		return nil, errors.NewInvalidArgumentError("Table.Categorical", "column is not categorical", name)
	}
	out := make([]string, len(c.strings))
	copy(out, c.strings)
	return out, nil
}

// WithNumeric returns a new table with a numeric column appended. The
// column name must be unique and the values must match the row count.
func (t *Table) WithNumeric(name string, values []float64) (*Table, error) {
	if err := t.checkNewColumn("Table.WithNumeric", name, len(values)); err != nil {
		return nil, err
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	nt := t.shallowCopy()
	nt.appendColumn(&column{name: name, typ: Numeric, floats: vals})
	return nt, nil
}

// WithCategorical returns a new table with a categorical column appended.
func (t *Table) WithCategorical(name string, values []string) (*Table, error) {
	if err := t.checkNewColumn("Table.WithCategorical", name, len(values)); err != nil {
		return nil, err
	}
	vals := make([]string, len(values))
	copy(vals, values)
	nt := t.shallowCopy()
	nt.appendColumn(&column{name: name, typ: Categorical, strings: vals})
	return nt, nil
}

// Drop returns a new table without the named column.
func (t *Table) Drop(name string) (*Table, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewInvalidArgumentError("Table.Drop", "no such column", name)
	}
	nt := NewTable(t.rows)
	for j, c := range t.cols {
		if j == i {
			continue
		}
		nt.appendColumn(c)
	}
	return nt, nil
}

// Select returns a new table with only the named columns, in the order
// given.
func (t *Table) Select(names []string) (*Table, error) {
	nt := NewTable(t.rows)
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return nil, errors.NewInvalidArgumentError("Table.Select", "no such column", name)
		}
		if nt.Has(name) {
			return nil, errors.NewInvalidArgumentError("Table.Select", "duplicate column", name)
		}
		nt.appendColumn(t.cols[i])
	}
	return nt, nil
}

// ToFactor returns a new table where every column is categorical. Numeric
// values are formatted with strconv.FormatFloat(v, 'g', -1, 64), so the
// encoding is deterministic and identical between fit and predict.
func (t *Table) ToFactor() *Table {
	nt := NewTable(t.rows)
	for _, c := range t.cols {
		if c.typ == Categorical {
			nt.appendColumn(c)
			continue
		}
		vals := make([]string, len(c.floats))
		for i, v := range c.floats {
			vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		nt.appendColumn(&column{name: c.name, typ: Categorical, strings: vals})
	}
	return nt
}

// checkNewColumn validates the invariants for appending a column: unique
// name, length equal to the table's row count.
func (t *Table) checkNewColumn(op, name string, length int) error {
	if name == "" {
		return errors.NewInvalidArgumentError(op, "empty column name", nil)
	}
	if _, ok := t.index[name]; ok {
		return errors.NewInvalidArgumentError(op, "duplicate column name", name)
	}
	if length != t.rows {
		return errors.NewDimensionError(op, t.rows, length, 0)
	}
	return nil
}

// shallowCopy copies the column list and index. Columns themselves are
// never mutated after construction, so sharing them is safe.
func (t *Table) shallowCopy() *Table {
	nt := NewTable(t.rows)
	for _, c := range t.cols {
		nt.appendColumn(c)
	}
	return nt
}

func (t *Table) appendColumn(c *column) {
	t.index[c.name] = len(t.cols)
	t.cols = append(t.cols, c)
}
