package preprocessing

import (
	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
)

// SelectNumericColumns returns the columns eligible for discretization:
// those declared Numeric in the table's schema, optionally restricted to an
// allow-list. A nil allow-list means all columns are considered; a non-nil
// list is walked in its own order and every entry must name an existing
// column.
//
// Selection is driven by the declared column type, not by sniffing values,
// so a column of numbers stored as categorical strings is never selected.
func SelectNumericColumns(t *dataset.Table, allow []string) ([]string, error) {
	if t == nil {
		return nil, errors.NewInvalidArgumentError("SelectNumericColumns", "nil table", nil)
	}

	candidates := allow
	if candidates == nil {
		candidates = t.Columns()
	}

	selected := make([]string, 0, len(candidates))
	for _, name := range candidates {
		typ, err := t.Type(name)
		if err != nil {
			return nil, err
		}
		if typ == dataset.Numeric {
			selected = append(selected, name)
		}
	}
	return selected, nil
}

// FilterColumns returns the names from cols that do not appear in exclude.
// Order is preserved.
func FilterColumns(cols, exclude []string) []string {
	if len(exclude) == 0 {
		out := make([]string, len(cols))
		copy(out, cols)
		return out
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	out := make([]string, 0, len(cols))
	for _, name := range cols {
		if _, skip := excluded[name]; !skip {
			out = append(out, name)
		}
	}
	return out
}
