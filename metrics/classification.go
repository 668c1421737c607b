// Package metrics provides evaluation metrics for binary classifiers.
package metrics

import (
	"sort"

	"github.com/skater-ml/brlc/pkg/errors"
)

// Accuracy returns the fraction of labels predicted correctly.
func Accuracy(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Accuracy")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AUC returns the area under the ROC curve for binary labels and
// continuous scores, computed from the rank statistic with midranks for
// tied scores. Labels must be 0 or 1. When only one class is present the
// metric is undefined; a warning is emitted and 0.5 is returned.
func AUC(yTrue []int, scores []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "AUC")
	}
	if len(scores) != n {
		return 0, errors.NewDimensionError("AUC", n, len(scores), 0)
	}

	nPos := 0
	for _, y := range yTrue {
		switch y {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewInvalidArgumentError("AUC", "labels must be 0 or 1", y)
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present", 0.5))
		return 0.5, nil
	}

	// Rank the scores ascending, assigning midranks to ties.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		midrank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = midrank
		}
		i = j + 1
	}

	var posRankSum float64
	for i, y := range yTrue {
		if y == 1 {
			posRankSum += ranks[i]
		}
	}
	return (posRankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg)), nil
}
