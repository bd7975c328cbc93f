package split

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/split"
	"github.com/youta-t/flarc"
)

type Flag struct {
	TestSize  string `flag:"test-size" metavar:"FRACTION" help:"Fraction of rows in the test dataset, in [0, 1]. (default: complement of --train-size, or 0.25)"`
	TrainSize string `flag:"train-size" metavar:"FRACTION" help:"Fraction of rows in the train dataset, in [0, 1]. (default: complement of --test-size)"`
	TestName  string `flag:"test-name" help:"Name of the test dataset. Generated if not given."`
	TrainName string `flag:"train-name" help:"Name of the train dataset. Generated if not given."`
}

const ARG_DATASET = "DATASET"

// Output is what the command prints.
type Output struct {
	Train string `json:"train"`
	Test  string `json:"test,omitempty"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Split a dataset into train and test datasets.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset to be split.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Split rows of a dataset into two new datasets, by hash of rows.

The names of created datasets are printed as JSON:

    {"train": "...", "test": "..."}

If the train dataset is created but the test dataset is not,
the command prints the train dataset only and fails.
`),
	)
}

func parseSize(name, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, common.UsageError("--%s should be a number: %s", name, value)
	}
	return &f, nil
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		handle *gateway.Handle,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		dataset := cl.Args()[ARG_DATASET][0]
		flags := cl.Flags()

		testSize, err := parseSize("test-size", flags.TestSize)
		if err != nil {
			return err
		}
		trainSize, err := parseSize("train-size", flags.TrainSize)
		if err != nil {
			return err
		}

		result, err := split.New(handle).Split(ctx, dataset, split.Options{
			TestSize:  testSize,
			TrainSize: trainSize,
			TestName:  flags.TestName,
			TrainName: flags.TrainName,
		})
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			var incomplete *xe.IncompleteSplitError
			if errors.As(err, &incomplete) {
				logger.Printf("train dataset %s is created, but test dataset is not.", result.Train)
				if err := dump(cl, Output{Train: result.Train}); err != nil {
					logger.Printf("failed to print result: %s", err)
				}
			}
			return err
		}

		logger.Printf("%s is split into %s (train) and %s (test).", dataset, result.Train, result.Test)
		return dump(cl, Output{Train: result.Train, Test: result.Test})
	}
}

func dump(cl flarc.Commandline[Flag], out Output) error {
	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}
