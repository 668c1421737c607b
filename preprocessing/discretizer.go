// Package preprocessing converts continuous features into the categorical
// form the rule-list backend requires.
package preprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/skater-ml/brlc/core/model"
	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
)

// BinLabelSuffix is appended to a column name to form the name of its
// discretized companion column.
const BinLabelSuffix = "_q_label"

// Binning is the discretization record for one column: the value-space bin
// edges derived during Fit and the label assigned to each bin. It is
// immutable once created and is applied unchanged at prediction time, so
// training and prediction always share the same bin boundaries.
type Binning struct {
	Column string
	Edges  []float64
	Labels []string
}

// Apply maps values onto bin labels using the stored edges. Bins are
// left-open, right-closed; values outside the fitted range clamp to the
// outer bins.
func (b Binning) Apply(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = b.Labels[b.binIndex(v)]
	}
	return out
}

func (b Binning) binIndex(v float64) int {
	for i := 1; i < len(b.Edges); i++ {
		if v <= b.Edges[i] {
			return i - 1
		}
	}
	if n := len(b.Edges) - 2; n > 0 {
		return n
	}
	return 0
}

// QuantileDiscretizer bins continuous columns into equal-frequency ordinal
// categories. Fit derives the bin edges; Transform applies the recorded
// edges without recomputing quantiles, so data seen at prediction time is
// binned exactly as the training data was.
//
// Values are rank-transformed before the quantile cut points are taken
// (ties broken by first occurrence), which keeps the cut points
// well-defined for columns dominated by duplicate values. Cut points that
// still coincide after rounding are collapsed silently, which can reduce
// the number of bins below the requested count.
type QuantileDiscretizer struct {
	model.BaseEstimator

	quantiles     []float64
	binLabels     []string
	precision     int
	dropOriginals bool

	binnings []Binning
}

// QuantileDiscretizerOption is a functional option for QuantileDiscretizer.
type QuantileDiscretizerOption func(*QuantileDiscretizer)

// WithQuantiles requests n equal-frequency bins.
func WithQuantiles(n int) QuantileDiscretizerOption {
	return func(d *QuantileDiscretizer) {
		if n < 1 {
			d.quantiles = nil
			return
		}
		edges := make([]float64, n+1)
		for i := 0; i <= n; i++ {
			edges[i] = float64(i) / float64(n)
		}
		d.quantiles = edges
	}
}

// WithQuantileEdges sets explicit quantile cut points, an ascending
// sequence of values in [0, 1].
func WithQuantileEdges(edges []float64) QuantileDiscretizerOption {
	return func(d *QuantileDiscretizer) {
		d.quantiles = append([]float64(nil), edges...)
	}
}

// WithBinLabels sets the labels assigned to the bins in increasing order.
// The label count must equal the bin count remaining after duplicate-edge
// collapsing; Fit reports InvalidArgument otherwise.
func WithBinLabels(labels []string) QuantileDiscretizerOption {
	return func(d *QuantileDiscretizer) {
		d.binLabels = append([]string(nil), labels...)
	}
}

// WithPrecision sets the number of decimal digits used when storing bin
// edges (default 3).
func WithPrecision(p int) QuantileDiscretizerOption {
	return func(d *QuantileDiscretizer) {
		d.precision = p
	}
}

// WithDropOriginals controls whether Transform removes the source
// continuous columns after binning (default false).
func WithDropOriginals(drop bool) QuantileDiscretizerOption {
	return func(d *QuantileDiscretizer) {
		d.dropOriginals = drop
	}
}

// NewQuantileDiscretizer creates a discretizer with quartile bins, default
// labels and precision 3.
func NewQuantileDiscretizer(opts ...QuantileDiscretizerOption) *QuantileDiscretizer {
	d := &QuantileDiscretizer{
		quantiles: []float64{0, 0.25, 0.5, 0.75, 1.0},
		precision: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fit derives the bin edges for each named column from the table.
func (d *QuantileDiscretizer) Fit(t *dataset.Table, columns []string) error {
	if t == nil {
		return errors.NewInvalidArgumentError("QuantileDiscretizer.Fit", "nil table", nil)
	}
	if err := validateQuantiles(d.quantiles); err != nil {
		return err
	}

	binnings := make([]Binning, 0, len(columns))
	for _, name := range columns {
		values, err := t.Numeric(name)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return errors.Wrap(errors.ErrEmptyData, "QuantileDiscretizer.Fit: "+name)
		}
		edges := d.computeEdges(values)
		nBins := len(edges) - 1
		if nBins < 1 {
			// All values identical: a single degenerate bin.
			nBins = 1
		}
		labels := d.binLabels
		if labels == nil {
			labels = defaultLabels(nBins)
		} else if len(labels) != nBins {
			return errors.NewInvalidArgumentError("QuantileDiscretizer.Fit",
				fmt.Sprintf("column %q needs %d bin labels", name, nBins), len(labels))
		}
		binnings = append(binnings, Binning{Column: name, Edges: edges, Labels: labels})
	}

	d.binnings = binnings
	d.SetFitted()
	return nil
}

// Transform appends a `<column>_q_label` categorical column for every
// fitted binning, applying the recorded edges. The input table is never
// mutated; a new table is returned. When the discretizer was configured to
// drop originals, the source continuous columns are absent from the result.
func (d *QuantileDiscretizer) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !d.IsFitted() {
		return nil, errors.NewNotFittedError("QuantileDiscretizer", "Transform")
	}
	return ApplyBinnings(t, d.binnings, d.dropOriginals)
}

// FitTransform fits on the named columns and transforms the same table.
func (d *QuantileDiscretizer) FitTransform(t *dataset.Table, columns []string) (*dataset.Table, error) {
	if err := d.Fit(t, columns); err != nil {
		return nil, err
	}
	return d.Transform(t)
}

// Binnings returns the discretization records derived by Fit.
func (d *QuantileDiscretizer) Binnings() []Binning {
	out := make([]Binning, len(d.binnings))
	copy(out, d.binnings)
	return out
}

// ApplyBinnings applies previously derived discretization records to a
// table. This is also the path prediction takes: the edges come from the
// records, never from the data being transformed.
func ApplyBinnings(t *dataset.Table, binnings []Binning, dropOriginals bool) (*dataset.Table, error) {
	if t == nil {
		return nil, errors.NewInvalidArgumentError("ApplyBinnings", "nil table", nil)
	}
	out := t
	for _, b := range binnings {
		values, err := out.Numeric(b.Column)
		if err != nil {
			return nil, err
		}
		out, err = out.WithCategorical(b.Column+BinLabelSuffix, b.Apply(values))
		if err != nil {
			return nil, err
		}
		if dropOriginals {
			out, err = out.Drop(b.Column)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// computeEdges derives the value-space bin edges for one column.
//
// The quantile cut points are taken over the rank transform of the values
// (ranks 1..n, ties broken by first occurrence), so every cut point is
// well-defined even when the column is dominated by duplicates. Each
// rank-space cut is then mapped back to a value through the sorted values
// by linear interpolation, rounded to the configured precision, and
// coinciding edges are dropped.
func (d *QuantileDiscretizer) computeEdges(values []float64) []float64 {
	n := len(values)

	// Stable sort of row indices by value = first-occurrence tie break.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	sortedValues := make([]float64, n)
	for pos, row := range idx {
		sortedValues[pos] = values[row]
	}

	edges := make([]float64, 0, len(d.quantiles))
	for _, q := range d.quantiles {
		// Ranks are exactly 1..n, so the type-7 linear quantile of the
		// rank vector has the closed form 1 + q*(n-1).
		cut := 1 + q*float64(n-1)
		edge := roundTo(valueAtRank(sortedValues, cut), d.precision)
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return edges
}

// valueAtRank linearly interpolates the value at a fractional rank
// position, cut in [1, n].
func valueAtRank(sortedValues []float64, cut float64) float64 {
	n := len(sortedValues)
	lo := int(math.Floor(cut))
	hi := int(math.Ceil(cut))
	if lo < 1 {
		lo = 1
	}
	if hi > n {
		hi = n
	}
	frac := cut - math.Floor(cut)
	return sortedValues[lo-1] + frac*(sortedValues[hi-1]-sortedValues[lo-1])
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func defaultLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

func validateQuantiles(qs []float64) error {
	if len(qs) < 2 {
		return errors.NewInvalidArgumentError("QuantileDiscretizer", "need at least two quantile cut points", len(qs))
	}
	for i, q := range qs {
		if q < 0 || q > 1 {
			return errors.NewInvalidArgumentError("QuantileDiscretizer", "quantile cut points must lie in [0, 1]", q)
		}
		if i > 0 && q <= qs[i-1] {
			return errors.NewInvalidArgumentError("QuantileDiscretizer", "quantile cut points must be strictly ascending", qs)
		}
	}
	return nil
}
