package datasets

import (
	"context"
	"fmt"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/utils/pointer"
)

type ImportOptions struct {
	// Delimiter of the file. Empty means DefaultDelimiter.
	Delimiter string

	// IndexLabel is the column used as row names.
	//
	// nil means DefaultIndexLabel. Empty string means no row name column.
	IndexLabel *string

	// Output is the dataset to be created.
	//
	// If nil, a tabular dataset named as the imported dataset.
	Output *procedures.OutputDataset
}

// ImportProcedure builds the procedure importing the file of dataset.
func ImportProcedure(dataset Dataset, opts ImportOptions) (procedures.Procedure, error) {
	if dataset.Name == "" {
		return procedures.Procedure{}, xe.NewConfigurationError("dataset is not specified")
	}
	path, err := dataset.FilePath()
	if err != nil {
		return procedures.Procedure{}, err
	}

	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	it := procedures.ImportText{
		DataFileURL:    fileURL(path),
		OutputDataset:  procedures.ResolveOutput(opts.Output, dataset.Name),
		Delimiter:      delimiter,
		IgnoreBadLines: pointer.Ref(true),
		RunOnCreation:  pointer.Ref(true),
	}
	if idx := pointer.Or(opts.IndexLabel, DefaultIndexLabel); idx != "" {
		it.Select = fmt.Sprintf("* EXCLUDING (%s)", idx)
		it.Named = fmt.Sprintf("cast(%s as string)", idx)
	}
	return it.Procedure(), nil
}

// Import loads the file of dataset into the server.
//
// The output dataset on the server is deleted before importing.
//
// # Returns
//
// - string: id of imported dataset
//
// - error: ConfigurationError or RemoteOperationError
func Import(ctx context.Context, h *gateway.Handle, dataset Dataset, opts ImportOptions) (string, error) {
	proc, err := ImportProcedure(dataset, opts)
	if err != nil {
		return "", err
	}
	gw, err := h.Gateway()
	if err != nil {
		return "", err
	}

	out := proc.Params.(procedures.ImportText).OutputDataset.ID
	if err := gw.DeleteDataset(ctx, out); err != nil {
		return "", err
	}

	resp, err := gw.PutProcedure(ctx, ImportProcedureId, proc)
	if err != nil {
		return "", err
	}
	if !resp.Created() {
		return "", xe.NewRemoteOperationError(
			fmt.Sprintf("could not import %s", dataset.Name), resp.StatusCode, resp.Body,
		)
	}
	return out, nil
}
