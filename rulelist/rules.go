package rulelist

import (
	"encoding/gob"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
)

func init() {
	gob.Register(&RuleList{})
}

// Condition is one column=value test in a rule antecedent.
type Condition struct {
	Column string
	Value  string
}

// Rule is a decision rule antecedent: a conjunction of conditions. A rule
// with no conditions is the default rule and matches every row.
type Rule struct {
	Conditions []Condition
}

// IsDefault reports whether the rule matches unconditionally.
func (r Rule) IsDefault() bool {
	return len(r.Conditions) == 0
}

// Name renders the antecedent in the conventional set notation, e.g.
// "{age_q_label=3,sex=male}". The default rule renders as "{default}".
func (r Rule) Name() string {
	if r.IsDefault() {
		return "{default}"
	}
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = c.Column + "=" + c.Value
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// RuleList is a fitted ordered rule list: for each rule, its antecedent and
// the two-class probability of its consequent. It is the model handle
// produced by StaticBackend and is registered with gob so the facade can
// persist it. Rules are 0-indexed here; the printed presentation numbers
// them from 1.
type RuleList struct {
	Rules []Rule
	// Probs holds, per rule, the probability of the negative class at
	// index 0 and of the positive class at index 1.
	Probs   [][2]float64
	PosSign int
	NegSign int
}

// RuleNames returns the rule names in list order.
func (rl *RuleList) RuleNames() []string {
	names := make([]string, len(rl.Rules))
	for i, r := range rl.Rules {
		names[i] = r.Name()
	}
	return names
}

// EvaluateRow returns the index of the first rule whose antecedent matches
// the row. The trailing default rule guarantees a match.
func (rl *RuleList) EvaluateRow(row map[string]string) int {
	for i, r := range rl.Rules {
		matched := true
		for _, cond := range r.Conditions {
			if row[cond.Column] != cond.Value {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return len(rl.Rules) - 1
}

// Predict evaluates the rule list against every row of a categorical table
// and returns the n×2 class probability matrix.
func (rl *RuleList) Predict(data *dataset.Table) (*mat.Dense, error) {
	if data == nil {
		return nil, errors.NewInvalidArgumentError("RuleList.Predict", "nil table", nil)
	}
	if len(rl.Rules) == 0 {
		return nil, errors.New("rule list has no rules")
	}

	// Fetch each referenced column once up front.
	columns := make(map[string][]string)
	for _, r := range rl.Rules {
		for _, cond := range r.Conditions {
			if _, ok := columns[cond.Column]; ok {
				continue
			}
			vals, err := data.Categorical(cond.Column)
			if err != nil {
				return nil, err
			}
			columns[cond.Column] = vals
		}
	}

	n := data.NumRows()
	probs := mat.NewDense(n, 2, nil)
	row := make(map[string]string, len(columns))
	for i := 0; i < n; i++ {
		for name, vals := range columns {
			row[name] = vals[i]
		}
		ri := rl.EvaluateRow(row)
		probs.Set(i, 0, rl.Probs[ri][0])
		probs.Set(i, 1, rl.Probs[ri][1])
	}
	return probs, nil
}

// WriteSummary renders the rule list in the conventional printed form,
// numbering rules from 1.
func (rl *RuleList) WriteSummary(w io.Writer) error {
	for i, r := range rl.Rules {
		var line string
		switch {
		case r.IsDefault():
			line = fmt.Sprintf("else (default rule) then positive probability = %.4f\n", rl.Probs[i][1])
		case i == 0:
			line = fmt.Sprintf("If %s (rule[%d]) then positive probability = %.4f\n", r.Name(), i+1, rl.Probs[i][1])
		default:
			line = fmt.Sprintf("else if %s (rule[%d]) then positive probability = %.4f\n", r.Name(), i+1, rl.Probs[i][1])
		}
		if _, err := w.Write([]byte(line)); err != nil {
			return errors.Wrap(err, "failed to write rule summary")
		}
	}
	return nil
}
