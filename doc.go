// Package brlc provides a Bayesian Rule List Classifier for Go: a thin,
// interpretable classification facade that delegates rule-list learning to
// an external backend and handles the data preparation around it.
//
// The heavy lifting (MCMC search over rule lists, as in Scalable Bayesian
// Rule Lists) is performed by a pluggable rulelist.Backend; this module
// contributes the quantile discretization of continuous features, the
// categorical encoding the backend requires, thresholded binary
// prediction, and rule introspection.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/skater-ml/brlc/dataset"
//	    "github.com/skater-ml/brlc/rulelist"
//	)
//
//	func main() {
//	    X := dataset.NewTable(4)
//	    X, _ = X.WithNumeric("age", []float64{23, 41, 35, 67})
//	    y := []int{0, 1, 0, 1}
//
//	    backend := rulelist.NewStaticBackend([]rulelist.Rule{
//	        {Conditions: []rulelist.Condition{{Column: "age_q_label", Value: "4"}}},
//	    })
//	    clf := rulelist.NewBRLC(backend)
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    probs, labels, err := clf.Predict(X, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = probs
//	    _ = labels
//	}
//
// Only binary classification is supported. A BRLC instance is not safe for
// concurrent use without external locking.
package brlc
