package log

// Standard attribute keys for model and operation context. Using these keys
// consistently keeps fit/predict/persistence logs filterable.
const (
	// ModelNameKey identifies the estimator type, e.g. "BRLC".
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "predict", "predict_proba", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "rulelist", "preprocessing", "dataset"
	ComponentKey = "ml.component"
)

// Attribute keys describing the data being processed.
const (
	// SamplesKey is the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns in the dataset.
	FeaturesKey = "data.features"

	// RulesKey is the number of rules in a fitted rule list.
	RulesKey = "model.rules"

	// PathKey is the filesystem path of a persistence operation.
	PathKey = "io.path"
)
