package datasets

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/names"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/utils/pointer"
)

// Records is an in-memory table.
type Records struct {
	Header []string
	Rows   [][]string
}

type FromRecordsOptions struct {
	// Name of the dataset to be created. Empty means a generated name.
	Name string

	// IndexName is a column in Header used as row names. Empty means no row names.
	IndexName string

	// Dir is where the temporary file is written. Empty means the current directory.
	//
	// The server reads the file, so it should be visible to the server.
	Dir string
}

// FromRecords creates a dataset on the server from records.
//
// Records are written into a temporary file, imported, and the file is removed.
//
// # Returns
//
// - string: id of created dataset
//
// - error: ConfigurationError, RemoteOperationError or I/O error
func FromRecords(ctx context.Context, h *gateway.Handle, records Records, opts FromRecordsOptions) (string, error) {
	if len(records.Header) == 0 {
		return "", xe.NewConfigurationError("header is empty")
	}
	for nth, r := range records.Rows {
		if len(r) != len(records.Header) {
			return "", xe.NewConfigurationError(
				"row #%d has %d values, but there are %d columns", nth, len(r), len(records.Header),
			)
		}
	}
	if opts.IndexName != "" && !slices.Contains(records.Header, opts.IndexName) {
		return "", xe.NewConfigurationError("index %s is not in header", opts.IndexName)
	}
	gw, err := h.Gateway()
	if err != nil {
		return "", err
	}

	name := opts.Name
	if name == "" {
		name = names.Generate()
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "mldbkit-*.csv")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	w.Comma = ';'
	if err := w.Write(records.Header); err != nil {
		tmp.Close()
		return "", err
	}
	if err := w.WriteAll(records.Rows); err != nil { // WriteAll flushes
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path, err := filepath.Abs(tmp.Name())
	if err != nil {
		return "", err
	}

	it := procedures.ImportText{
		DataFileURL:    fileURL(path),
		OutputDataset:  procedures.Tabular(name),
		Delimiter:      DefaultDelimiter,
		IgnoreBadLines: pointer.Ref(true),
		RunOnCreation:  pointer.Ref(true),
	}
	if opts.IndexName != "" {
		it.Named = opts.IndexName
		it.Select = fmt.Sprintf("* EXCLUDING (%s)", opts.IndexName)
	}

	resp, err := gw.PutProcedure(ctx, ImportProcedureId, it.Procedure())
	if err != nil {
		return "", err
	}
	if !resp.Created() {
		return "", xe.NewRemoteOperationError("could not create dataset", resp.StatusCode, resp.Body)
	}
	return name, nil
}
