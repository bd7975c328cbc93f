package classifier

import (
	xe "github.com/opst/mldbkit/pkg/errors"
)

// Algorithm is a configuration of classifier training.
type Algorithm interface {
	// Key is the name of the configuration, passed as "algorithm" of classifier.train.
	Key() string

	// DefaultName is the name of classifier function when no name is given.
	DefaultName() string

	// Configuration returns {Key(): {...parameters}}.
	Configuration() map[string]any

	// Validate reports ConfigurationError when parameters are out of range.
	Validate() error
}

// DecisionTree is a plain decision tree.
type DecisionTree struct {
	// -1 means nodes are expanded until all leaves are pure.
	MaxDepth int

	// proportion of features considered at each split.
	RandomFeaturePropn float64

	UpdateAlg string
}

func NewDecisionTree() DecisionTree {
	return DecisionTree{MaxDepth: -1, RandomFeaturePropn: 1, UpdateAlg: "prob"}
}

func (DecisionTree) Key() string         { return "dt" }
func (DecisionTree) DefaultName() string { return "DecisionTreeClassifier" }

func (dt DecisionTree) Configuration() map[string]any {
	return map[string]any{
		dt.Key(): map[string]any{
			"_note":                "Plain decision tree",
			"type":                 "decision_tree",
			"max_depth":            dt.MaxDepth,
			"verbosity":            3,
			"update_alg":           dt.UpdateAlg,
			"random_feature_propn": dt.RandomFeaturePropn,
		},
	}
}

func (dt DecisionTree) Validate() error {
	if dt.RandomFeaturePropn < 0 || 1 < dt.RandomFeaturePropn {
		return xe.NewConfigurationError("random feature proportion should be in [0, 1], but %v", dt.RandomFeaturePropn)
	}
	return nil
}

// RandomForest bags decision trees.
type RandomForest struct {
	// number of trees
	NEstimators int

	MaxDepth           int
	RandomFeaturePropn float64
	UpdateAlg          string
}

func NewRandomForest() RandomForest {
	return RandomForest{NEstimators: 10, MaxDepth: -1, RandomFeaturePropn: 1, UpdateAlg: "gentle"}
}

func (RandomForest) Key() string         { return "rf" }
func (RandomForest) DefaultName() string { return "RandomForestClassifier" }

func (rf RandomForest) Configuration() map[string]any {
	return map[string]any{
		rf.Key(): map[string]any{
			"_note":     "random forest",
			"type":      "bagging",
			"verbosity": 3,
			"weak_learner": map[string]any{
				"type":                 "decision_tree",
				"max_depth":            rf.MaxDepth,
				"verbosity":            0,
				"update_alg":           rf.UpdateAlg,
				"random_feature_propn": rf.RandomFeaturePropn,
			},
			"num_bags": rf.NEstimators,
		},
	}
}

func (rf RandomForest) Validate() error {
	if rf.NEstimators <= 0 {
		return xe.NewConfigurationError("number of estimators should be positive, but %d", rf.NEstimators)
	}
	if rf.RandomFeaturePropn < 0 || 1 < rf.RandomFeaturePropn {
		return xe.NewConfigurationError("random feature proportion should be in [0, 1], but %v", rf.RandomFeaturePropn)
	}
	return nil
}

// LogisticRegression is a generalized linear model with logit link.
type LogisticRegression struct {
	// add a constant term (bias)
	FitIntercept bool

	// regularize coefficients
	RidgeRegression bool

	// proportion of features used in training, in [0, 1].
	FeatureProportion float64
}

func NewLogisticRegression() LogisticRegression {
	return LogisticRegression{FitIntercept: true, RidgeRegression: true, FeatureProportion: 1.0}
}

func (LogisticRegression) Key() string         { return "logisticRegression" }
func (LogisticRegression) DefaultName() string { return "LogisticRegression" }

func (lr LogisticRegression) Configuration() map[string]any {
	return map[string]any{
		lr.Key(): map[string]any{
			"_note":              "Logistic Regression. Very smooth but needs very good features",
			"type":               "glz",
			"verbosity":          3,
			"feature_proportion": lr.FeatureProportion,
			"add_bias":           lr.FitIntercept,
			"ridge_regression":   lr.RidgeRegression,
		},
	}
}

func (lr LogisticRegression) Validate() error {
	if lr.FeatureProportion < 0 || 1 < lr.FeatureProportion {
		return xe.NewConfigurationError("feature proportion must be between 0 and 1, but %v", lr.FeatureProportion)
	}
	return nil
}

// AlgorithmOf returns the algorithm with default parameters.
//
// key is one of "dt", "rf", "glz" or "logisticRegression".
func AlgorithmOf(key string) (Algorithm, error) {
	switch key {
	case "dt":
		return NewDecisionTree(), nil
	case "rf":
		return NewRandomForest(), nil
	case "glz", "logisticRegression":
		return NewLogisticRegression(), nil
	default:
		return nil, xe.NewConfigurationError("unknown algorithm: %q (dt, rf or glz)", key)
	}
}
