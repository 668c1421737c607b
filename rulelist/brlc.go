package rulelist

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/skater-ml/brlc/core/model"
	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
	brlclog "github.com/skater-ml/brlc/pkg/log"
	"github.com/skater-ml/brlc/preprocessing"
)

// BRLC is the Bayesian Rule List Classifier facade. It orchestrates
// feature selection, quantile discretization and categorical encoding
// around an external rule-list Backend, and post-processes the backend's
// probability output into thresholded binary labels.
//
// The discretization record derived during Fit (bin edges and labels per
// column) is stored on the facade and applied unchanged in PredictProba,
// so prediction data is binned exactly as the training data was.
//
// A BRLC is not safe for concurrent use: Fit, LoadModel and SetParams
// mutate facade state. Callers sharing one instance across goroutines must
// serialize access externally.
type BRLC struct {
	model.BaseEstimator

	backend Backend
	params  Hyperparameters

	discretize   bool
	dropFeatures bool

	initialized bool
	handle      ModelHandle

	binnings            []preprocessing.Binning
	featureNames        []string
	discretizedFeatures []string

	logger *slog.Logger
}

// Option is a functional option for BRLC.
type Option func(*BRLC)

// WithIterations sets the MCMC iteration count per chain (default 30000).
func WithIterations(n int) Option { return func(c *BRLC) { c.params.Iterations = n } }

// WithPosSign sets the positive label sign (default 1).
func WithPosSign(s int) Option { return func(c *BRLC) { c.params.PosSign = s } }

// WithNegSign sets the negative label sign (default 0).
func WithNegSign(s int) Option { return func(c *BRLC) { c.params.NegSign = s } }

// WithRuleMinLen sets the minimum rule cardinality (default 1).
func WithRuleMinLen(n int) Option { return func(c *BRLC) { c.params.RuleMinLen = n } }

// WithRuleMaxLen sets the maximum rule cardinality (default 8).
func WithRuleMaxLen(n int) Option { return func(c *BRLC) { c.params.RuleMaxLen = n } }

// WithMinSupportPos sets the minimum positive-class support (default 0.1).
func WithMinSupportPos(v float64) Option { return func(c *BRLC) { c.params.MinSupportPos = v } }

// WithMinSupportNeg sets the minimum negative-class support (default 0.1).
func WithMinSupportNeg(v float64) Option { return func(c *BRLC) { c.params.MinSupportNeg = v } }

// WithEta sets the backend's eta parameter (default 1.0).
func WithEta(v float64) Option { return func(c *BRLC) { c.params.Eta = v } }

// WithNChains sets the number of independent MCMC chains (default 50).
func WithNChains(n int) Option { return func(c *BRLC) { c.params.NChains = n } }

// WithAlpha sets the pseudo-count prior (default 1.0).
func WithAlpha(v float64) Option { return func(c *BRLC) { c.params.Alpha = v } }

// WithLambda sets the expected rule-list-length prior (default 10.0).
func WithLambda(v float64) Option { return func(c *BRLC) { c.params.Lambda = v } }

// WithDiscretization enables or disables quantile discretization of
// continuous features during Fit (default enabled).
func WithDiscretization(enabled bool) Option { return func(c *BRLC) { c.discretize = enabled } }

// WithDropFeatures controls whether discretized source columns are removed
// from the feature set (default false: both columns are kept).
func WithDropFeatures(drop bool) Option { return func(c *BRLC) { c.dropFeatures = drop } }

// NewBRLC creates a classifier facade around the given backend.
func NewBRLC(backend Backend, opts ...Option) *BRLC {
	c := &BRLC{
		backend:    backend,
		params:     DefaultHyperparameters(),
		discretize: true,
		logger: slog.Default().With(
			brlclog.ModelNameKey, "BRLC",
			brlclog.ComponentKey, "rulelist",
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fitConfig carries the per-Fit discretization settings.
type fitConfig struct {
	nQuantiles    int
	quantileEdges []float64
	binLabels     []string
	precision     int
	undiscretized []string
}

// FitOption is a functional option for BRLC.Fit.
type FitOption func(*fitConfig)

// WithFitQuantiles requests n equal-frequency bins instead of the default
// quartiles.
func WithFitQuantiles(n int) FitOption { return func(f *fitConfig) { f.nQuantiles = n } }

// WithFitQuantileEdges sets explicit quantile cut points in [0, 1].
func WithFitQuantileEdges(edges []float64) FitOption {
	return func(f *fitConfig) { f.quantileEdges = edges }
}

// WithFitBinLabels sets the labels for the discretization bins.
func WithFitBinLabels(labels []string) FitOption { return func(f *fitConfig) { f.binLabels = labels } }

// WithFitPrecision sets the decimal precision for stored bin edges
// (default 3).
func WithFitPrecision(p int) FitOption { return func(f *fitConfig) { f.precision = p } }

// WithUndiscretized exempts columns from discretization even when they are
// numeric.
func WithUndiscretized(columns ...string) FitOption {
	return func(f *fitConfig) { f.undiscretized = columns }
}

// Fit trains the classifier. y must be aligned 1:1 with the rows of X and
// contain exactly two distinct values; multi-class label vectors are
// rejected with UnsupportedOperation. Refitting replaces the previously
// held model.
func (c *BRLC) Fit(X *dataset.Table, y []int, opts ...FitOption) error {
	if X == nil {
		return errors.NewInvalidArgumentError("BRLC.Fit", "nil training table", nil)
	}
	if len(y) != X.NumRows() {
		return errors.NewDimensionError("BRLC.Fit", X.NumRows(), len(y), 0)
	}
	if n := countDistinct(y); n != 2 {
		return errors.NewUnsupportedOperationError("BRLC.Fit",
			"supports only binary classification, got "+strconv.Itoa(n)+" distinct labels")
	}
	if X.Has(LabelColumn) {
		return errors.NewInvalidArgumentError("BRLC.Fit",
			"training table must not contain a column named "+strconv.Quote(LabelColumn), nil)
	}

	cfg := fitConfig{precision: 3}
	for _, opt := range opts {
		opt(&cfg)
	}

	data := X
	c.binnings = nil
	c.discretizedFeatures = nil
	if c.discretize {
		candidates := preprocessing.FilterColumns(X.Columns(), cfg.undiscretized)
		targets, err := preprocessing.SelectNumericColumns(X, candidates)
		if err != nil {
			return err
		}
		disc := preprocessing.NewQuantileDiscretizer(c.discretizerOptions(cfg)...)
		data, err = disc.FitTransform(X, targets)
		if err != nil {
			return err
		}
		c.binnings = disc.Binnings()
		for _, name := range targets {
			c.discretizedFeatures = append(c.discretizedFeatures, name+preprocessing.BinLabelSuffix)
		}
	}
	c.featureNames = data.Columns()

	labeled, err := data.WithCategorical(LabelColumn, labelStrings(y))
	if err != nil {
		return err
	}

	if err := c.ensureInitialized(); err != nil {
		return err
	}
	c.logger.Info("rule list training started",
		brlclog.OperationKey, "fit",
		brlclog.SamplesKey, X.NumRows(),
		brlclog.FeaturesKey, len(c.featureNames),
	)
	handle, err := c.backend.Fit(labeled.ToFactor(), c.params)
	if err != nil {
		return err
	}
	c.handle = handle
	c.SetFitted()
	c.logger.Info("rule list training completed", brlclog.OperationKey, "fit")
	return nil
}

// discretizerOptions translates a fitConfig into discretizer options.
func (c *BRLC) discretizerOptions(cfg fitConfig) []preprocessing.QuantileDiscretizerOption {
	opts := []preprocessing.QuantileDiscretizerOption{
		preprocessing.WithPrecision(cfg.precision),
		preprocessing.WithDropOriginals(c.dropFeatures),
	}
	switch {
	case cfg.quantileEdges != nil:
		opts = append(opts, preprocessing.WithQuantileEdges(cfg.quantileEdges))
	case cfg.nQuantiles > 0:
		opts = append(opts, preprocessing.WithQuantiles(cfg.nQuantiles))
	}
	if cfg.binLabels != nil {
		opts = append(opts, preprocessing.WithBinLabels(cfg.binLabels))
	}
	return opts
}

// PredictProba returns the n×2 class probability matrix for X, column 0
// for the negative class and column 1 for the positive class. The binnings
// recorded during Fit are applied to X before encoding; quantiles are
// never recomputed on prediction data.
func (c *BRLC) PredictProba(X *dataset.Table) (*mat.Dense, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("BRLC", "PredictProba")
	}
	if X == nil {
		return nil, errors.NewInvalidArgumentError("BRLC.PredictProba", "nil table", nil)
	}

	data := X
	if len(c.binnings) > 0 {
		var err error
		data, err = preprocessing.ApplyBinnings(X, c.binnings, c.dropFeatures)
		if err != nil {
			return nil, err
		}
	}
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	c.logger.Debug("predicting class probabilities",
		brlclog.OperationKey, "predict_proba",
		brlclog.SamplesKey, X.NumRows(),
	)
	return c.backend.Predict(c.handle, data.ToFactor())
}

// predictConfig carries the thresholding settings for Predict.
type predictConfig struct {
	threshold     float64
	positiveLabel int
}

// PredictOption is a functional option for BRLC.Predict.
type PredictOption func(*predictConfig)

// WithThreshold sets the probability threshold for the positive class
// (default 0.5). The comparison is strict: a probability exactly equal to
// the threshold yields the negative label.
func WithThreshold(t float64) PredictOption { return func(p *predictConfig) { p.threshold = t } }

// WithPositiveLabel selects which probability column is thresholded
// (default 1, the positive class).
func WithPositiveLabel(label int) PredictOption {
	return func(p *predictConfig) { p.positiveLabel = label }
}

// Predict returns thresholded class labels. Exactly one of X and probs
// must be supplied: pass X to compute probabilities through PredictProba,
// or pass a probability matrix from an earlier PredictProba call to avoid
// recomputation. The returned slices hold, per row, the positive-class
// probability and the discrete 0/1 label.
func (c *BRLC) Predict(X *dataset.Table, probs mat.Matrix, opts ...PredictOption) ([]float64, []int, error) {
	cfg := predictConfig{threshold: 0.5, positiveLabel: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case X == nil && probs == nil:
		return nil, nil, errors.NewInvalidArgumentError("BRLC.Predict",
			"either a table or a probability matrix is required", nil)
	case X != nil && probs != nil:
		return nil, nil, errors.NewInvalidArgumentError("BRLC.Predict",
			"a table and a probability matrix are mutually exclusive", nil)
	case X != nil:
		var err error
		probs, err = c.PredictProba(X)
		if err != nil {
			return nil, nil, err
		}
	}

	rows, cols := probs.Dims()
	if cfg.positiveLabel < 0 || cfg.positiveLabel >= cols {
		return nil, nil, errors.NewInvalidArgumentError("BRLC.Predict",
			"positive label out of range", cfg.positiveLabel)
	}

	scores := make([]float64, rows)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		scores[i] = probs.At(i, cfg.positiveLabel)
		if scores[i] > cfg.threshold {
			labels[i] = 1
		}
	}
	return scores, labels, nil
}

// PrintModel writes the learned ordered rule list to w (os.Stdout when w
// is nil).
func (c *BRLC) PrintModel(w io.Writer) error {
	if !c.IsFitted() {
		return errors.NewNotFittedError("BRLC", "PrintModel")
	}
	if w == nil {
		w = os.Stdout
	}
	if err := c.ensureInitialized(); err != nil {
		return err
	}
	return c.backend.PrintSummary(c.handle, w)
}

// AccessLearnedRules returns learned rule names by position. ruleIndexes is
// either the literal "all" (the full list in the backend's native order), a
// single 1-based index such as "3", or a colon range such as "2:4".
//
// The range form keeps the historical translation from the 1-based printed
// presentation to 0-based storage: "a:b" returns positions a-1 up to but
// excluding b-1, so "2:4" yields the rules printed as [2] and [3].
func (c *BRLC) AccessLearnedRules(ruleIndexes string) ([]string, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("BRLC", "AccessLearnedRules")
	}
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	info, err := c.backend.Describe(c.handle)
	if err != nil {
		return nil, err
	}
	names := info.RuleNames

	if ruleIndexes == "all" {
		out := make([]string, len(names))
		copy(out, names)
		return out, nil
	}

	if strings.Contains(ruleIndexes, ":") {
		parts := strings.SplitN(ruleIndexes, ":", 2)
		start, err1 := strconv.Atoi(parts[0])
		end, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil, errors.NewInvalidArgumentError("BRLC.AccessLearnedRules",
				"rule range must be two integers separated by a colon", ruleIndexes)
		}
		if start < 1 || end < 1 || end-1 > len(names) {
			return nil, errors.NewInvalidArgumentError("BRLC.AccessLearnedRules",
				"rule range out of bounds", ruleIndexes)
		}
		if start > end {
			return []string{}, nil
		}
		out := make([]string, end-start)
		copy(out, names[start-1:end-1])
		return out, nil
	}

	index, err := strconv.Atoi(ruleIndexes)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("BRLC.AccessLearnedRules",
			`rule indexes must be "all", an index or a range`, ruleIndexes)
	}
	if index < 1 || index > len(names) {
		return nil, errors.NewInvalidArgumentError("BRLC.AccessLearnedRules",
			"rule index out of bounds", ruleIndexes)
	}
	return []string{names[index-1]}, nil
}

// modelSnapshot is the gob payload for SaveModel/LoadModel: the opaque
// backend handle together with the preprocessing state needed to reproduce
// predictions after a load.
type modelSnapshot struct {
	Handle              ModelHandle
	Params              Hyperparameters
	Binnings            []preprocessing.Binning
	FeatureNames        []string
	DiscretizedFeatures []string
	DropFeatures        bool
	Discretize          bool
}

// SaveModel persists the fitted model to path. When compress is true the
// stream is gzip-compressed. Backends with custom handle types must
// register them with encoding/gob.
func (c *BRLC) SaveModel(path string, compress bool) error {
	if !c.IsFitted() {
		return errors.NewNotFittedError("BRLC", "SaveModel")
	}
	snap := modelSnapshot{
		Handle:              c.handle,
		Params:              c.params,
		Binnings:            c.binnings,
		FeatureNames:        c.featureNames,
		DiscretizedFeatures: c.discretizedFeatures,
		DropFeatures:        c.dropFeatures,
		Discretize:          c.discretize,
	}
	if err := model.SaveModel(&snap, path, compress); err != nil {
		c.logger.Error("model save failed", brlclog.ErrAttr(err),
			brlclog.OperationKey, "save", brlclog.PathKey, path)
		return err
	}
	c.logger.Info("model saved", brlclog.OperationKey, "save", brlclog.PathKey, path)
	return nil
}

// LoadModel restores a model persisted with SaveModel, replacing any model
// the facade currently holds. Failures are logged and returned with the
// underlying I/O error kind intact, so callers can still match them with
// errors.Is.
func (c *BRLC) LoadModel(path string) error {
	var snap modelSnapshot
	if err := model.LoadModel(&snap, path); err != nil {
		c.logger.Error("model load failed", brlclog.ErrAttr(err),
			brlclog.OperationKey, "load", brlclog.PathKey, path)
		return err
	}
	c.handle = snap.Handle
	c.params = snap.Params
	c.binnings = snap.Binnings
	c.featureNames = snap.FeatureNames
	c.discretizedFeatures = snap.DiscretizedFeatures
	c.dropFeatures = snap.DropFeatures
	c.discretize = snap.Discretize
	c.SetFitted()
	c.logger.Info("model loaded", brlclog.OperationKey, "load", brlclog.PathKey, path)
	return nil
}

// FeatureNames returns the feature columns recorded during Fit, including
// generated bin-label columns.
func (c *BRLC) FeatureNames() []string {
	out := make([]string, len(c.featureNames))
	copy(out, c.featureNames)
	return out
}

// DiscretizedFeatures returns the names of the bin-label columns generated
// during Fit.
func (c *BRLC) DiscretizedFeatures() []string {
	out := make([]string, len(c.discretizedFeatures))
	copy(out, c.discretizedFeatures)
	return out
}

// Binnings returns the discretization records recorded during Fit.
func (c *BRLC) Binnings() []preprocessing.Binning {
	out := make([]preprocessing.Binning, len(c.binnings))
	copy(out, c.binnings)
	return out
}

// GetParams returns the hyperparameters under their conventional SBRL
// names.
func (c *BRLC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"iters":          c.params.Iterations,
		"pos_sign":       c.params.PosSign,
		"neg_sign":       c.params.NegSign,
		"rule_minlen":    c.params.RuleMinLen,
		"rule_maxlen":    c.params.RuleMaxLen,
		"minsupport_pos": c.params.MinSupportPos,
		"minsupport_neg": c.params.MinSupportNeg,
		"eta":            c.params.Eta,
		"nchain":         c.params.NChains,
		"alpha":          c.params.Alpha,
		"lambda":         c.params.Lambda,
	}
}

// SetParams updates hyperparameters by their conventional SBRL names.
// Unknown names are rejected with InvalidArgument.
func (c *BRLC) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		var err error
		switch name {
		case "iters":
			c.params.Iterations, err = toInt(name, value)
		case "pos_sign":
			c.params.PosSign, err = toInt(name, value)
		case "neg_sign":
			c.params.NegSign, err = toInt(name, value)
		case "rule_minlen":
			c.params.RuleMinLen, err = toInt(name, value)
		case "rule_maxlen":
			c.params.RuleMaxLen, err = toInt(name, value)
		case "minsupport_pos":
			c.params.MinSupportPos, err = toFloat(name, value)
		case "minsupport_neg":
			c.params.MinSupportNeg, err = toFloat(name, value)
		case "eta":
			c.params.Eta, err = toFloat(name, value)
		case "nchain":
			c.params.NChains, err = toInt(name, value)
		case "alpha":
			c.params.Alpha, err = toFloat(name, value)
		case "lambda":
			c.params.Lambda, err = toFloat(name, value)
		default:
			return errors.NewInvalidArgumentError("BRLC.SetParams", "unknown parameter", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases backend resources for backends with a lifecycle. The
// facade itself remains usable; the backend is re-initialized on the next
// operation.
func (c *BRLC) Close() error {
	if !c.initialized {
		return nil
	}
	c.initialized = false
	if lc, ok := c.backend.(Lifecycle); ok {
		return lc.Close()
	}
	return nil
}

// ensureInitialized runs the backend's Init once before its first use.
func (c *BRLC) ensureInitialized() error {
	if c.initialized {
		return nil
	}
	if lc, ok := c.backend.(Lifecycle); ok {
		if err := lc.Init(); err != nil {
			return errors.Wrap(err, "backend initialization failed")
		}
	}
	c.initialized = true
	return nil
}

func toInt(name string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, errors.NewInvalidArgumentError("BRLC.SetParams", name+" must be an integer", v)
	}
}

func toFloat(name string, v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, errors.NewInvalidArgumentError("BRLC.SetParams", name+" must be a number", v)
	}
}

func countDistinct(y []int) int {
	seen := make(map[int]struct{}, 2)
	for _, v := range y {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func labelStrings(y []int) []string {
	out := make([]string, len(y))
	for i, v := range y {
		out[i] = strconv.Itoa(v)
	}
	return out
}
