// Package classifier trains classifiers on the server, and predicts or evaluates with them.
//
// A Classifier is a function on the server, named as the classifier.
// Fit creates the function, Predict and Test call it.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/query"
)

const DefaultMode = "boolean"

type Classifier struct {
	handle    *gateway.Handle
	algorithm Algorithm
	name      string
	mode      string

	// set by Fit
	features []string
	label    string
}

type Option func(*Classifier) *Classifier

// WithName sets the name of the classifier function.
func WithName(name string) Option {
	return func(c *Classifier) *Classifier {
		c.name = name
		return c
	}
}

// WithMode sets the classifier mode: "boolean", "categorical" or "regression".
func WithMode(mode string) Option {
	return func(c *Classifier) *Classifier {
		c.mode = mode
		return c
	}
}

// WithFeatures makes the classifier ready to predict or be tested
// without Fit, when the classifier function exists on the server already.
func WithFeatures(features []string, label string) Option {
	return func(c *Classifier) *Classifier {
		c.features = features
		c.label = label
		return c
	}
}

// New creates a Classifier.
//
// # Args
//
// - h: gateway handle
//
// - algorithm
//
// - options: WithName (default: algorithm.DefaultName()) and WithMode (default: "boolean").
//
// # Returns
//
// - *Classifier
//
// - error: ConfigurationError when algorithm is invalid.
func New(h *gateway.Handle, algorithm Algorithm, options ...Option) (*Classifier, error) {
	if algorithm == nil {
		return nil, xe.NewConfigurationError("algorithm is not specified")
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		handle:    h,
		algorithm: algorithm,
		name:      algorithm.DefaultName(),
		mode:      DefaultMode,
	}
	for _, o := range options {
		c = o(c)
	}
	if c.name == "" {
		return nil, xe.NewConfigurationError("classifier name is empty")
	}
	return c, nil
}

func (c *Classifier) Name() string {
	return c.name
}

func (c *Classifier) Mode() string {
	return c.mode
}

// Features returns features and label given to Fit.
func (c *Classifier) Features() ([]string, string) {
	return c.features, c.label
}

func (c *Classifier) fitted() bool {
	return 0 < len(c.features)
}

// TrainingData renders a query yielding "features" and "label" columns.
func TrainingData(dataset string, features []string, label string) query.Select {
	return query.Select{
		Columns: []string{
			query.As(query.Row(query.Idents(features...)...), "features"),
			query.As(label, "label"),
		},
		From: query.Table(dataset),
	}
}

// Fit trains the classifier with dataset.
//
// The trained model is exposed as a function named as the classifier.
//
// # Args
//
// - ctx
//
// - dataset: training dataset
//
// - features: columns used as features
//
// - label: column used as label
//
// # Returns
//
// - error: ConfigurationError or RemoteOperationError
func (c *Classifier) Fit(ctx context.Context, dataset string, features []string, label string) error {
	if dataset == "" {
		return xe.NewConfigurationError("dataset is not specified")
	}
	if len(features) == 0 {
		return xe.NewConfigurationError("no features are specified")
	}
	if label == "" {
		return xe.NewConfigurationError("label is not specified")
	}
	gw, err := c.handle.Gateway()
	if err != nil {
		return err
	}

	resp, err := gw.PutProcedure(ctx, c.name, procedures.ClassifierTrain{
		TrainingData:  TrainingData(dataset, features, label).String(),
		Algorithm:     c.algorithm.Key(),
		Configuration: c.algorithm.Configuration(),
		Mode:          c.mode,
		ModelFileURL:  fmt.Sprintf("file://%s.cls", c.name),
		FunctionName:  c.name,
		RunOnCreation: true,
	}.Procedure())
	if err != nil {
		return err
	}
	if !resp.Created() {
		return xe.NewRemoteOperationError(
			fmt.Sprintf("could not train %s", c.name), resp.StatusCode, resp.Body,
		)
	}

	c.features = features
	c.label = label
	return nil
}

// Predict applies the classifier to dataset.
//
// # Args
//
// - ctx
//
// - dataset: dataset to be predicted. It should have the features given to Fit.
//
// - output: dataset where predictions are written into, as "predict" column.
// If nil, a tabular dataset with a generated name.
//
// # Returns
//
// - string: id of the dataset of predictions
//
// - error: ConfigurationError (including not fitted yet) or RemoteOperationError
func (c *Classifier) Predict(ctx context.Context, dataset string, output *procedures.OutputDataset) (string, error) {
	if !c.fitted() {
		return "", xe.NewConfigurationError("classifier %s has not been fitted", c.name)
	}
	if dataset == "" {
		return "", xe.NewConfigurationError("dataset is not specified")
	}
	gw, err := c.handle.Gateway()
	if err != nil {
		return "", err
	}

	out := procedures.ResolveOutput(output, "")
	resp, err := gw.PutProcedure(ctx, c.name+"_predict", procedures.Transform{
		InputData: query.Select{
			Columns: []string{query.As(c.call(), "predict")},
			From:    query.Table(dataset),
		}.String(),
		OutputDataset: out,
		RunOnCreation: true,
	}.Procedure())
	if err != nil {
		return "", err
	}
	if !resp.Created() {
		return "", xe.NewRemoteOperationError("could not create dataset", resp.StatusCode, resp.Body)
	}
	return out.ID, nil
}

// call renders `name({{"f1", "f2"} AS features})`.
func (c *Classifier) call() string {
	return query.Call(c.name, query.Row(query.As(query.Row(query.Idents(c.features...)...), "features")))
}

// String shows configuration of the algorithm.
func (c *Classifier) String() string {
	buf, err := json.MarshalIndent(c.algorithm.Configuration(), "", "    ")
	if err != nil {
		return fmt.Sprintf("%s (%s)", c.name, c.algorithm.Key())
	}
	return string(buf)
}
