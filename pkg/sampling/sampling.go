// Package sampling draws stratified samples of datasets on the server.
package sampling

import (
	"context"
	"slices"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/query"
)

// ProcedureId is the procedure id under which sampling transforms are submitted.
const ProcedureId = "stratifiedSample"

type Sampler struct {
	handle *gateway.Handle
}

func New(h *gateway.Handle) *Sampler {
	return &Sampler{handle: h}
}

// Query builds a query sampling rows per label.
//
// For each label, `weights[label]` rows are drawn without replacement from rows
// whose labelColumn equals to the label. Samples are merged into one.
// Labels are ordered, so the query is same for same arguments.
func Query(dataset, labelColumn string, weights map[string]int) query.Select {
	labels := make([]string, 0, len(weights))
	for l := range weights {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	strata := make([]query.Select, 0, len(labels))
	for _, label := range labels {
		strata = append(strata, query.Select{
			From:  query.Sample(query.Table(dataset), weights[label], false),
			Where: query.Eq(labelColumn, label),
		})
	}
	return query.Select{From: query.Merge(strata...)}
}

// Stratified creates a dataset which is a stratified sample of dataset.
//
// # Args
//
// - ctx
//
// - dataset: dataset to be sampled.
//
// - labelColumn: column holding the label (stratum) of each row.
//
// - weights: number of rows to be sampled per label.
// Labels not in weights are not sampled.
//
// - output: descriptor of the dataset to be created. If nil, a tabular dataset with a generated name.
//
// # Returns
//
// - string: id of created dataset
//
// - error: ConfigurationError or RemoteOperationError.
func (s *Sampler) Stratified(
	ctx context.Context,
	dataset string,
	labelColumn string,
	weights map[string]int,
	output *procedures.OutputDataset,
) (string, error) {
	if dataset == "" {
		return "", xe.NewConfigurationError("dataset is not specified")
	}
	if labelColumn == "" {
		return "", xe.NewConfigurationError("label column is not specified")
	}
	if len(weights) == 0 {
		return "", xe.NewConfigurationError("weights are empty. Specify at least one label to be sampled")
	}
	for label, count := range weights {
		if count < 0 {
			return "", xe.NewConfigurationError("weight of label %q is negative: %d", label, count)
		}
	}

	gw, err := s.handle.Gateway()
	if err != nil {
		return "", err
	}

	out := procedures.ResolveOutput(output, "")
	resp, err := gw.PutProcedure(ctx, ProcedureId, procedures.Transform{
		InputData:     Query(dataset, labelColumn, weights).String(),
		OutputDataset: out,
		RunOnCreation: true,
	}.Procedure())
	if err != nil {
		return "", err
	}
	if !resp.Created() {
		return "", xe.NewRemoteOperationError("could not create stratified sample", resp.StatusCode, resp.Body)
	}
	return out.ID, nil
}
