package datasets

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"unicode/utf8"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/query"
	"github.com/opst/mldbkit/pkg/utils/pointer"
)

// RowNameColumn is the column of row names in query results.
const RowNameColumn = "_rowName"

// times to try removing a partially written file
const rollbackAttempts = 3

type ExportOptions struct {
	// Delimiter of the file. Empty means DefaultDelimiter.
	Delimiter string

	// Columns to be exported. Empty means all.
	Columns []string

	// Index tells whether row names are written as the first column. nil means true.
	Index *bool

	// IndexLabel is the header of the row name column. Empty means DefaultIndexLabel.
	IndexLabel string

	// Progress, if set, is called after each row is written.
	Progress func(written int, total int)
}

// Export writes the dataset on the server into its local file.
//
// When it fails, the partially written file is removed.
//
// # Returns
//
// - string: path of written file
//
// - error: ConfigurationError, RemoteOperationError or I/O error
func Export(ctx context.Context, h *gateway.Handle, dataset Dataset, opts ExportOptions) (string, error) {
	if dataset.Name == "" {
		return "", xe.NewConfigurationError("dataset is not specified")
	}
	delimiter, err := delimiterRune(opts.Delimiter)
	if err != nil {
		return "", err
	}
	gw, err := h.Gateway()
	if err != nil {
		return "", err
	}
	path, err := dataset.FilePath()
	if err != nil {
		return "", err
	}

	table, err := gw.Query(ctx, query.Select{
		Columns: opts.Columns,
		From:    query.Table(dataset.Name),
	}.String())
	if err != nil {
		return "", err
	}

	if err := writeCSV(path, table, delimiter, opts); err != nil {
		for range rollbackAttempts {
			if dataset.Rollback() {
				return "", err
			}
		}
		return "", fmt.Errorf("%w (and could not delete %s)", err, path)
	}
	return path, nil
}

func delimiterRune(delimiter string) (rune, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, xe.NewConfigurationError("delimiter should be a character: %q", delimiter)
	}
	r, _ := utf8.DecodeRuneInString(delimiter)
	return r, nil
}

func writeCSV(path string, table gateway.Table, delimiter rune, opts ExportOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0755)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	index := pointer.Or(opts.Index, true)
	indexLabel := opts.IndexLabel
	if indexLabel == "" {
		indexLabel = DefaultIndexLabel
	}

	rowNameAt := slices.Index(table.Columns, RowNameColumn)
	header := make([]string, 0, len(table.Columns)+1)
	if index {
		header = append(header, indexLabel)
	}
	for i, c := range table.Columns {
		if i == rowNameAt {
			continue
		}
		header = append(header, c)
	}

	w := csv.NewWriter(f)
	w.Comma = delimiter
	if err := w.Write(header); err != nil {
		return err
	}

	total := len(table.Rows)
	for nth, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return fmt.Errorf(
				"row #%d has %d values, but there are %d columns", nth, len(row), len(table.Columns),
			)
		}
		record := make([]string, 0, len(header))
		if index {
			if 0 <= rowNameAt {
				record = append(record, Cell(row[rowNameAt]))
			} else {
				record = append(record, strconv.Itoa(nth))
			}
		}
		for i, v := range row {
			if i == rowNameAt {
				continue
			}
			record = append(record, Cell(v))
		}
		if err := w.Write(record); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(nth+1, total)
		}
	}
	w.Flush()
	return w.Error()
}

// Cell formats a value in query results as a CSV cell.
//
// null is an empty cell. Numbers are formatted in the shortest form.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		buf, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(buf)
	}
}

// ExportCSVOptions are options of ExportOnServer.
type ExportCSVOptions struct {
	// Headers tells whether the header line is written. nil leaves it to the server.
	Headers *bool

	Delimiter string
	QuoteChar string
}

// ExportOnServer writes the result of q into a CSV file at dataFileURL, by the server.
//
// # Returns
//
// - error: ConfigurationError or RemoteOperationError
func ExportOnServer(ctx context.Context, h *gateway.Handle, q string, dataFileURL string, opts ExportCSVOptions) error {
	if q == "" || dataFileURL == "" {
		return xe.NewConfigurationError("both of query and destination URL should be specified")
	}
	gw, err := h.Gateway()
	if err != nil {
		return err
	}
	resp, err := gw.PutProcedure(ctx, ExportProcedureId, procedures.ExportCSV{
		ExportData:    q,
		DataFileURL:   dataFileURL,
		Headers:       opts.Headers,
		Delimiter:     opts.Delimiter,
		QuoteChar:     opts.QuoteChar,
		RunOnCreation: pointer.Ref(true),
	}.Procedure())
	if err != nil {
		return err
	}
	if !resp.Created() {
		return xe.NewRemoteOperationError("could not export", resp.StatusCode, resp.Body)
	}
	return nil
}
