package rulelist

import (
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
)

// StaticBackend scores a caller-supplied sequence of candidate rules
// against training data. It performs no rule mining and no MCMC search:
// the rule order is exactly the candidate order, and each rule's class
// probabilities are the empirical label frequencies within its support,
// smoothed by the Alpha pseudo-count prior. A default rule covering all
// rows is appended when the candidates do not end with one.
//
// StaticBackend exists so the Backend boundary has an in-process
// implementation for tests, examples and persistence round-trips; a
// production deployment would plug in a real SBRL binding here.
type StaticBackend struct {
	candidates []Rule
}

// NewStaticBackend creates a backend over a fixed candidate rule sequence.
func NewStaticBackend(candidates []Rule) *StaticBackend {
	rules := make([]Rule, len(candidates))
	copy(rules, candidates)
	return &StaticBackend{candidates: rules}
}

// Fit scores the candidate rules on a categorical table that includes the
// label column. Candidates whose cardinality falls outside
// [RuleMinLen, RuleMaxLen] are skipped. The label column must contain
// exactly two distinct values.
func (b *StaticBackend) Fit(data *dataset.Table, hp Hyperparameters) (ModelHandle, error) {
	if data == nil {
		return nil, errors.NewInvalidArgumentError("StaticBackend.Fit", "nil table", nil)
	}
	labels, err := data.Categorical(LabelColumn)
	if err != nil {
		return nil, err
	}
	distinct := make(map[string]struct{})
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	if len(distinct) != 2 {
		return nil, errors.NewUnsupportedOperationError("StaticBackend.Fit",
			"label column must contain exactly two distinct values")
	}

	pos := strconv.Itoa(hp.PosSign)
	n := len(labels)

	rl := &RuleList{PosSign: hp.PosSign, NegSign: hp.NegSign}
	for _, rule := range b.candidates {
		if !rule.IsDefault() {
			if len(rule.Conditions) < hp.RuleMinLen || len(rule.Conditions) > hp.RuleMaxLen {
				continue
			}
		}
		support, posCount, err := ruleSupport(data, rule, labels, pos)
		if err != nil {
			return nil, err
		}
		if support > 0 && float64(posCount)/float64(n) < hp.MinSupportPos {
			errors.Warn(errors.Newf("rule %s: positive support %.3f below minimum %.3f",
				rule.Name(), float64(posCount)/float64(n), hp.MinSupportPos))
		}
		rl.Rules = append(rl.Rules, rule)
		rl.Probs = append(rl.Probs, smoothedProbs(support, posCount, hp.Alpha))
	}

	if len(rl.Rules) == 0 || !rl.Rules[len(rl.Rules)-1].IsDefault() {
		support, posCount, err := ruleSupport(data, Rule{}, labels, pos)
		if err != nil {
			return nil, err
		}
		rl.Rules = append(rl.Rules, Rule{})
		rl.Probs = append(rl.Probs, smoothedProbs(support, posCount, hp.Alpha))
	}
	return rl, nil
}

// Predict evaluates the fitted rule list on a categorical table.
func (b *StaticBackend) Predict(handle ModelHandle, data *dataset.Table) (*mat.Dense, error) {
	rl, err := b.ruleList(handle, "Predict")
	if err != nil {
		return nil, err
	}
	return rl.Predict(data)
}

// PrintSummary writes the ordered rule list to w.
func (b *StaticBackend) PrintSummary(handle ModelHandle, w io.Writer) error {
	rl, err := b.ruleList(handle, "PrintSummary")
	if err != nil {
		return err
	}
	return rl.WriteSummary(w)
}

// Describe returns the learned rules in their native order.
func (b *StaticBackend) Describe(handle ModelHandle) (*RuleListInfo, error) {
	rl, err := b.ruleList(handle, "Describe")
	if err != nil {
		return nil, err
	}
	info := &RuleListInfo{RuleNames: rl.RuleNames()}
	for i, name := range info.RuleNames {
		info.Rules = append(info.Rules, RuleInfo{Name: name, PositiveProbability: rl.Probs[i][1]})
	}
	return info, nil
}

func (b *StaticBackend) ruleList(handle ModelHandle, method string) (*RuleList, error) {
	rl, ok := handle.(*RuleList)
	if !ok {
		return nil, errors.NewInvalidArgumentError("StaticBackend."+method,
			"handle was not produced by this backend", handle)
	}
	return rl, nil
}

// ruleSupport counts the rows matching a rule antecedent and how many of
// them carry the positive label.
func ruleSupport(data *dataset.Table, rule Rule, labels []string, pos string) (support, posCount int, err error) {
	columns := make(map[string][]string, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		if _, ok := columns[cond.Column]; ok {
			continue
		}
		vals, err := data.Categorical(cond.Column)
		if err != nil {
			return 0, 0, err
		}
		columns[cond.Column] = vals
	}
	for i := range labels {
		matched := true
		for _, cond := range rule.Conditions {
			if columns[cond.Column][i] != cond.Value {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		support++
		if labels[i] == pos {
			posCount++
		}
	}
	return support, posCount, nil
}

// smoothedProbs computes the two-class probability of a rule consequent
// with the alpha pseudo-count prior applied to both classes.
func smoothedProbs(support, posCount int, alpha float64) [2]float64 {
	pPos := (float64(posCount) + alpha) / (float64(support) + 2*alpha)
	return [2]float64{1 - pPos, pPos}
}
