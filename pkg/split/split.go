// Package split divides a dataset into train and test datasets on the server.
//
// Rows are assigned by their rowHash() bucket, so sizes are accurate to 1% of the row count.
//
// Train and test thresholds are rounded independently.
// Complementary sizes on a half-percent boundary may overlap by one bucket:
// sizes 0.125 and 0.875 give thresholds 13 and 12, so bucket 12 is in both datasets.
package split

import (
	"context"
	"math"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/names"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/query"
)

// ProcedureId is the procedure id under which split transforms are submitted.
const ProcedureId = "train_test_split"

const DefaultTestSize = 0.25

// Options of Split.
type Options struct {
	// Fraction of rows in the test dataset, in [0, 1].
	//
	// If nil, it is the complement of TrainSize, or DefaultTestSize when both are nil.
	TestSize *float64

	// Fraction of rows in the train dataset, in [0, 1].
	//
	// If nil, it is the complement of TestSize.
	TrainSize *float64

	// Names of the datasets to be created. Empty means a generated name.
	TestName  string
	TrainName string
}

// Result of Split.
type Result struct {
	Train string
	Test  string
}

type Planner struct {
	handle *gateway.Handle
}

func New(h *gateway.Handle) *Planner {
	return &Planner{handle: h}
}

// Sizes resolves fractions of train and test from options.
//
// # Returns
//
// - float64, float64: train and test fractions
//
// - error: ConfigurationError when a size is out of [0, 1] or they sum up over 1.0.
func (o Options) Sizes() (train float64, test float64, err error) {
	switch {
	case o.TestSize == nil && o.TrainSize == nil:
		test = DefaultTestSize
		train = 1 - test
	case o.TrainSize == nil:
		test = *o.TestSize
		train = 1 - test
	case o.TestSize == nil:
		train = *o.TrainSize
		test = 1 - train
	default:
		train, test = *o.TrainSize, *o.TestSize
	}

	for _, s := range []struct {
		name string
		size float64
	}{{"train size", train}, {"test size", test}} {
		if math.IsNaN(s.size) || s.size < 0 || 1 < s.size {
			return 0, 0, xe.NewConfigurationError("%s should be in [0, 1], but %v", s.name, s.size)
		}
	}

	if 1 < train+test {
		return 0, 0, xe.NewConfigurationError(
			"the sum of train size and test size = %v, should sum to maximum 1. Reduce test size and/or train size",
			train+test,
		)
	}
	return train, test, nil
}

// Thresholds converts fractions into rowHash() bucket thresholds.
//
// Train rows are the ones whose bucket is < trainThreshold,
// and test rows are the ones whose bucket is >= testThreshold.
func Thresholds(train, test float64) (trainThreshold int, testThreshold int) {
	buckets := float64(query.RowHashBuckets)
	trainThreshold = int(math.Round(train * buckets))
	testThreshold = query.RowHashBuckets - int(math.Round(test*buckets))
	return
}

// Split creates train and test datasets from dataset.
//
// The train dataset is created first. When it fails, the test dataset is not requested.
//
// # Returns
//
// - Result: names of created datasets.
//
// - error: ConfigurationError, RemoteOperationError (creating train dataset has failed)
// or IncompleteSplitError (only train dataset has been created).
// On IncompleteSplitError, Result.Train is set.
func (p *Planner) Split(ctx context.Context, dataset string, opts Options) (Result, error) {
	if dataset == "" {
		return Result{}, xe.NewConfigurationError("dataset is not specified")
	}
	train, test, err := opts.Sizes()
	if err != nil {
		return Result{}, err
	}
	gw, err := p.handle.Gateway()
	if err != nil {
		return Result{}, err
	}

	trainThreshold, testThreshold := Thresholds(train, test)
	trainName := orGenerated(opts.TrainName)
	testName := orGenerated(opts.TestName)

	if err := transform(ctx, gw, query.Select{
		From:  query.Table(dataset),
		Where: query.RowHashBelow(trainThreshold),
	}, trainName); err != nil {
		return Result{}, err
	}

	if err := transform(ctx, gw, query.Select{
		From:  query.Table(dataset),
		Where: query.RowHashAtLeast(testThreshold),
	}, testName); err != nil {
		return Result{Train: trainName}, &xe.IncompleteSplitError{
			Created: []string{trainName}, Err: err,
		}
	}

	return Result{Train: trainName, Test: testName}, nil
}

func transform(ctx context.Context, gw gateway.Gateway, q query.Select, output string) error {
	resp, err := gw.PutProcedure(ctx, ProcedureId, procedures.Transform{
		InputData:     q.String(),
		OutputDataset: procedures.Tabular(output),
		RunOnCreation: true,
	}.Procedure())
	if err != nil {
		return err
	}
	if !resp.Created() {
		return xe.NewRemoteOperationError("could not create dataset", resp.StatusCode, resp.Body)
	}
	return nil
}

func orGenerated(name string) string {
	if name == "" {
		return names.Generate()
	}
	return name
}
