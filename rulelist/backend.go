// Package rulelist implements the Bayesian rule list classifier facade and
// the boundary to the external rule-list learning capability.
//
// The actual rule induction (MCMC search over rule lists) is delegated to a
// Backend implementation; this package orchestrates feature selection,
// discretization and categorical encoding around it, and post-processes its
// probability output into thresholded class labels.
package rulelist

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/skater-ml/brlc/dataset"
)

// LabelColumn is the name of the label column injected into the training
// table before it is handed to the backend. Input features must not use
// this name.
const LabelColumn = "label"

// ModelHandle is an opaque reference to a fitted rule-list model. Only the
// backend that produced a handle can interpret it. Concrete handle types
// must be registered with encoding/gob for SaveModel/LoadModel to work.
type ModelHandle interface{}

// Hyperparameters are the tuning knobs forwarded verbatim to the backend.
// The facade does not interpret them; their meaning is defined by the
// backend (iteration count and chain count for the MCMC search, rule
// cardinality and support bounds for rule mining, the alpha pseudo-count
// prior and the lambda rule-list-length prior).
type Hyperparameters struct {
	Iterations    int
	PosSign       int
	NegSign       int
	RuleMinLen    int
	RuleMaxLen    int
	MinSupportPos float64
	MinSupportNeg float64
	Eta           float64
	NChains       int
	Alpha         float64
	Lambda        float64
}

// DefaultHyperparameters returns the standard SBRL defaults.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Iterations:    30000,
		PosSign:       1,
		NegSign:       0,
		RuleMinLen:    1,
		RuleMaxLen:    8,
		MinSupportPos: 0.10,
		MinSupportNeg: 0.10,
		Eta:           1.0,
		NChains:       50,
		Alpha:         1.0,
		Lambda:        10.0,
	}
}

// RuleInfo describes one learned rule.
type RuleInfo struct {
	// Name is the backend's presentation of the rule antecedent.
	Name string
	// PositiveProbability is the rule's probability for the positive class.
	PositiveProbability float64
}

// RuleListInfo is the structured description of a fitted rule list,
// returned by Backend.Describe. RuleNames preserves the backend's native
// rule order.
type RuleListInfo struct {
	RuleNames []string
	Rules     []RuleInfo
}

// Backend is the sole boundary to the delegated rule-list learning
// capability. Every dataset crossing this boundary is fully categorical
// (see dataset.Table.ToFactor); training data additionally carries the
// LabelColumn. All calls block until the backend returns.
type Backend interface {
	// Fit learns a rule list from a categorical table that includes the
	// label column, and returns an opaque handle to the fitted model.
	Fit(data *dataset.Table, hp Hyperparameters) (ModelHandle, error)

	// Predict returns an n×2 matrix of per-row class probabilities,
	// column 0 for the negative class and column 1 for the positive class.
	Predict(handle ModelHandle, data *dataset.Table) (*mat.Dense, error)

	// PrintSummary writes the learned ordered rule list to w. Rules are
	// numbered from 1 in this presentation.
	PrintSummary(handle ModelHandle, w io.Writer) error

	// Describe exposes the learned rules and their order for
	// introspection.
	Describe(handle ModelHandle) (*RuleListInfo, error)
}

// Lifecycle is implemented by backends that need process-wide setup before
// first use (an embedded interpreter, a native library). The facade calls
// Init once before the first backend operation and Close from BRLC.Close.
type Lifecycle interface {
	Init() error
	Close() error
}
