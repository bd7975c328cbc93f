package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/datasets"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/query"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Dir         string   `flag:"dir" alias:"d" help:"Directory where the file is written. (default: current directory)"`
	Compression string   `flag:"compression" help:"Compression of the file name, like gz. (default: plain CSV)"`
	Delimiter   string   `flag:"delimiter" help:"Delimiter of the file. (default: ;)"`
	Column      []string `flag:"column" alias:"c" help:"Column to be exported. Repeatable. (default: all)"`
	IndexLabel  string   `flag:"index-label" help:"Header of the row name column. (default: rowName)"`
	NoIndex     bool     `flag:"no-index" help:"Do not write row names."`
	To          string   `flag:"to" metavar:"URL" help:"Let the service write the file at URL, instead of writing a local file."`
}

const ARG_DATASET = "DATASET"

type Option struct {
	progressOutput io.Writer
}

func WithProgressOutput(w io.Writer) func(*Option) *Option {
	return func(o *Option) *Option {
		o.progressOutput = w
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{progressOutput: os.Stderr}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Export a dataset into a CSV file.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset to be exported. The file is DATASET.csv (or DATASET.<compression>) in --dir.",
			},
		},
		common.NewTask(Task(option.progressOutput)),
		flarc.WithDescription(`
Export a dataset into a local CSV file, and print the path of the file.
If it fails, the partially written file is removed.

With --to, the service writes the file at the URL instead.
`),
	)
}

func Task(progressOutput io.Writer) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		handle *gateway.Handle,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		name := cl.Args()[ARG_DATASET][0]

		if flags.To != "" {
			q := query.Select{Columns: flags.Column, From: query.Table(name)}
			headers := true
			err := datasets.ExportOnServer(ctx, handle, q.String(), flags.To, datasets.ExportCSVOptions{
				Headers:   &headers,
				Delimiter: flags.Delimiter,
			})
			if err != nil {
				return usageOr(err)
			}
			logger.Printf("%s is exported to %s.", name, flags.To)
			_, err = fmt.Fprintln(cl.Stdout(), flags.To)
			return err
		}

		bar := pb.New(0)
		bar.SetWriter(progressOutput)
		if err := bar.Err(); err != nil {
			return err
		}
		bar.Start()

		index := !flags.NoIndex
		path, err := datasets.Export(ctx, handle, datasets.Dataset{
			Name:        name,
			Dir:         flags.Dir,
			Compression: flags.Compression,
		}, datasets.ExportOptions{
			Delimiter:  flags.Delimiter,
			Columns:    flags.Column,
			Index:      &index,
			IndexLabel: flags.IndexLabel,
			Progress: func(written, total int) {
				bar.SetTotal(int64(total))
				bar.SetCurrent(int64(written))
			},
		})
		bar.Finish()
		if err != nil {
			return usageOr(err)
		}

		logger.Printf("%s is exported to %s.", name, path)
		_, err = fmt.Fprintln(cl.Stdout(), path)
		return err
	}
}

func usageOr(err error) error {
	if errors.Is(err, xe.ErrConfiguration) {
		return errors.Join(flarc.ErrUsage, err)
	}
	return err
}
