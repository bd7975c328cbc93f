package importing

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/datasets"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Dir         string `flag:"dir" alias:"d" help:"Directory of the file. (default: current directory)"`
	Compression string `flag:"compression" help:"Compression of the file, like gz. (default: plain CSV)"`
	Delimiter   string `flag:"delimiter" help:"Delimiter of the file. (default: ;)"`
	IndexLabel  string `flag:"index-label" help:"Column used as row names. (default: rowName)"`
	NoIndex     bool   `flag:"no-index" help:"The file has no row name column."`
	Output      string `flag:"output" alias:"o" help:"Name of the dataset to be created. (default: DATASET)"`
}

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Import a local CSV file as a dataset.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Name of the dataset. The file is DATASET.csv (or DATASET.<compression>) in --dir.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Import a local file into the service.

The dataset on the service having the same name is deleted before importing.
The name of the imported dataset is printed.
`),
	)
}

// Options converts flags to options of import.
func (f Flag) Options() (datasets.ImportOptions, error) {
	opts := datasets.ImportOptions{Delimiter: f.Delimiter}
	switch {
	case f.NoIndex && f.IndexLabel != "":
		return opts, fmt.Errorf("--no-index and --index-label are exclusive")
	case f.NoIndex:
		none := ""
		opts.IndexLabel = &none
	case f.IndexLabel != "":
		label := f.IndexLabel
		opts.IndexLabel = &label
	}
	if f.Output != "" {
		o := procedures.Tabular(f.Output)
		opts.Output = &o
	}
	return opts, nil
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		handle *gateway.Handle,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		opts, err := flags.Options()
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}

		ds := datasets.Dataset{
			Name:        cl.Args()[ARG_DATASET][0],
			Dir:         flags.Dir,
			Compression: flags.Compression,
		}
		if !ds.ExistsOnDisk() {
			path, _ := ds.FilePath()
			return errors.Join(flarc.ErrUsage, fmt.Errorf("file is not found: %s", path))
		}

		id, err := datasets.Import(ctx, handle, ds, opts)
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}
		logger.Printf("%s is imported as %s.", ds.Name, id)
		_, err = fmt.Fprintln(cl.Stdout(), id)
		return err
	}
}
