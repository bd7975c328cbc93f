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

type PR struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
	F         float64 `json:"f"`
}

type Counts struct {
	TruePositives  float64 `json:"truePositives"`
	TrueNegatives  float64 `json:"trueNegatives"`
	FalsePositives float64 `json:"falsePositives"`
	FalseNegatives float64 `json:"falseNegatives"`
}

// Threshold is a score threshold and the metrics at the threshold.
type Threshold struct {
	PR        PR      `json:"pr"`
	MCC       float64 `json:"mcc"`
	Gain      float64 `json:"gain"`
	Threshold float64 `json:"threshold"`
	Counts    Counts  `json:"counts"`
}

func (t Threshold) String() string {
	return fmt.Sprintf(
		"threshold = %v: recall = %v, precision = %v, f = %v, mcc = %v, gain = %v (TP = %v, TN = %v, FP = %v, FN = %v)",
		t.Threshold, t.PR.Recall, t.PR.Precision, t.PR.F, t.MCC, t.Gain,
		t.Counts.TruePositives, t.Counts.TrueNegatives, t.Counts.FalsePositives, t.Counts.FalseNegatives,
	)
}

// Evaluation is a result of Test.
type Evaluation struct {
	// threshold maximizing Matthews correlation coefficient
	BestMCC Threshold `json:"bestMcc"`

	// threshold maximizing F-score
	BestF Threshold `json:"bestF"`

	// area under ROC curve
	AUC float64 `json:"auc"`
}

// TestInput tells what is evaluated.
//
// Either Classifier, or Score with Label is required.
type TestInput struct {
	// fitted classifier. Its features and label are used.
	Classifier *Classifier

	// expression of score, used when Classifier is nil.
	Score string

	// column of the label. When Classifier is given, it overrides the label given to Fit.
	Label string
}

func (in TestInput) testingData(dataset string) (procName string, mode string, q query.Select, err error) {
	if in.Classifier != nil {
		c := in.Classifier
		if !c.fitted() {
			return "", "", query.Select{}, xe.NewConfigurationError("classifier %s has not been fitted", c.name)
		}
		label := c.label
		if in.Label != "" {
			label = in.Label
		}
		return c.name, c.mode, query.Select{
			Columns: []string{
				query.As(c.call()+"[score]", "score"),
				query.As(label, "label"),
			},
			From: query.Table(dataset),
		}, nil
	}

	if in.Score == "" {
		return "", "", query.Select{}, xe.NewConfigurationError("either classifier or score should be specified")
	}
	if in.Label == "" {
		return "", "", query.Select{}, xe.NewConfigurationError(
			"if classifier is not provided, both score and label must be provided",
		)
	}
	return dataset, "", query.Select{
		Columns: []string{query.As(in.Score, "score"), query.As(in.Label, "label")},
		From:    query.Table(dataset),
	}, nil
}

// Test evaluates scores against labels in dataset.
//
// It submits classifier.test as "<classifier name>_test", or "<dataset>_test" when evaluating a score expression.
//
// # Args
//
// - ctx
//
// - h: gateway handle
//
// - dataset: dataset to be evaluated
//
// - in: what is evaluated
//
// - output: dataset where per-row results are written into. It may be nil.
//
// # Returns
//
// - Evaluation
//
// - error: ConfigurationError or RemoteOperationError.
// When the response is not shaped as expected, it is also RemoteOperationError.
func Test(ctx context.Context, h *gateway.Handle, dataset string, in TestInput, output *procedures.OutputDataset) (Evaluation, error) {
	if dataset == "" {
		return Evaluation{}, xe.NewConfigurationError("dataset is not specified")
	}
	procName, mode, q, err := in.testingData(dataset)
	if err != nil {
		return Evaluation{}, err
	}
	gw, err := h.Gateway()
	if err != nil {
		return Evaluation{}, err
	}

	resp, err := gw.PutProcedure(ctx, procName+"_test", procedures.ClassifierTest{
		TestingData:   q.String(),
		Mode:          mode,
		OutputDataset: output,
		RunOnCreation: true,
	}.Procedure())
	if err != nil {
		return Evaluation{}, err
	}
	if !resp.Created() {
		return Evaluation{}, xe.NewRemoteOperationError("could not test classifier", resp.StatusCode, resp.Body)
	}

	return ParseEvaluation(resp)
}

// ParseEvaluation extracts evaluation from a response of classifier.test run on creation.
func ParseEvaluation(resp gateway.Response) (Evaluation, error) {
	var body struct {
		Status struct {
			FirstRun struct {
				Status *Evaluation `json:"status"`
			} `json:"firstRun"`
		} `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return Evaluation{}, xe.NewRemoteOperationError(
			fmt.Sprintf("unexpected response: %s", err), resp.StatusCode, resp.Body,
		)
	}
	if body.Status.FirstRun.Status == nil {
		return Evaluation{}, xe.NewRemoteOperationError(
			"unexpected response: no result of the first run", resp.StatusCode, resp.Body,
		)
	}
	return *body.Status.FirstRun.Status, nil
}

// ExperimentResult is a response of classifier.experiment.
type ExperimentResult struct {
	// procedure id
	ID string

	// "status" of the response, as it is.
	Status json.RawMessage
}

// Experiment trains and tests the classifier over k folds of dataset.
//
// # Args
//
// - ctx
//
// - dataset
//
// - features, label: same as Fit
//
// - kfold: number of folds. 0 lets the server decide.
//
// - name: experiment name. If empty, "<classifier name>_xp".
//
// # Returns
//
// - ExperimentResult
//
// - error: ConfigurationError or RemoteOperationError
func (c *Classifier) Experiment(
	ctx context.Context, dataset string, features []string, label string, kfold int, name string,
) (ExperimentResult, error) {
	if dataset == "" {
		return ExperimentResult{}, xe.NewConfigurationError("dataset is not specified")
	}
	if len(features) == 0 || label == "" {
		return ExperimentResult{}, xe.NewConfigurationError("features and label should be specified")
	}
	if kfold < 0 {
		return ExperimentResult{}, xe.NewConfigurationError("kfold should not be negative: %d", kfold)
	}
	if name == "" {
		name = c.name + "_xp"
	}
	gw, err := c.handle.Gateway()
	if err != nil {
		return ExperimentResult{}, err
	}

	resp, err := gw.PutProcedure(ctx, name, procedures.ClassifierExperiment{
		ExperimentName:        name,
		TrainingData:          TrainingData(dataset, features, label).String(),
		KFold:                 kfold,
		ModelFileURLPattern:   fmt.Sprintf("file://%s_$runid.cls", name),
		Algorithm:             c.algorithm.Key(),
		Configuration:         c.algorithm.Configuration(),
		Mode:                  c.mode,
		OutputAccuracyDataset: true,
		RunOnCreation:         true,
	}.Procedure())
	if err != nil {
		return ExperimentResult{}, err
	}
	if !resp.Created() {
		return ExperimentResult{}, xe.NewRemoteOperationError("could not run experiment", resp.StatusCode, resp.Body)
	}

	var body struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ExperimentResult{}, xe.NewRemoteOperationError(
			fmt.Sprintf("unexpected response: %s", err), resp.StatusCode, resp.Body,
		)
	}
	return ExperimentResult{ID: name, Status: body.Status}, nil
}
