// Package model provides the shared estimator state machine and model
// persistence used by the preprocessing and rule-list packages.
package model

// EstimatorState represents the training state of an estimator.
type EstimatorState int

const (
	// NotFitted means the estimator has not been fitted or loaded yet.
	NotFitted EstimatorState = iota
	// Fitted means the estimator holds a usable model.
	Fitted
)

// BaseEstimator is embedded by every estimator. The only transition out of
// NotFitted is a successful Fit or load; replacing the model (refit, load)
// keeps the estimator Fitted.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
