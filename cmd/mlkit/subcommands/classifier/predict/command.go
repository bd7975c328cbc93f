package predict

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/classifier"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string   `flag:"name" alias:"n" help:"Name of the trained classifier function. Required."`
	Feature []string `flag:"feature" alias:"f" help:"Column used as a feature, in the same order as training. Repeatable. Required."`
	Output  string   `flag:"output" alias:"o" help:"Name of the dataset of predictions. Generated if not given."`
}

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Apply a trained classifier to a dataset.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset to be classified.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Apply a classifier trained by "classifier train" to each row of a dataset.

The name of the dataset holding predictions (column "predict") is printed.
`),
	)
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
		dataset := cl.Args()[ARG_DATASET][0]

		if flags.Name == "" {
			return common.UsageError("--name is required")
		}
		cls, err := classifier.New(
			handle, classifier.NewDecisionTree(),
			classifier.WithName(flags.Name),
			classifier.WithFeatures(flags.Feature, ""),
		)
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}

		var output *procedures.OutputDataset
		if flags.Output != "" {
			o := procedures.Tabular(flags.Output)
			output = &o
		}

		id, err := cls.Predict(ctx, dataset, output)
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}

		logger.Printf("predictions of %s for %s are in %s.", cls.Name(), dataset, id)
		_, err = fmt.Fprintln(cl.Stdout(), id)
		return err
	}
}
