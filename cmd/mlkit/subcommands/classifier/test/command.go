package test

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/classifier"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string   `flag:"name" alias:"n" help:"Name of the trained classifier function. Exclusive with --score."`
	Feature []string `flag:"feature" alias:"f" help:"Column used as a feature, in the same order as training. Repeatable."`
	Mode    string   `flag:"mode" metavar:"boolean|categorical|regression" help:"Mode of the classifier."`
	Score   string   `flag:"score" alias:"s" help:"Expression of score to be evaluated. Exclusive with --name."`
	Label   string   `flag:"label" alias:"l" help:"Column of labels. Required."`
	Output  string   `flag:"output" alias:"o" help:"Name of the dataset where per-row results are written."`
}

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Evaluate a classifier, or a score, against labels.",
		Flag{Mode: classifier.DefaultMode},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset used to evaluate.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Evaluate a trained classifier:

    {{ .Command }} --name my_rf --feature a --feature b --label y test_data

or evaluate a score expression:

    {{ .Command }} --score "a * 2" --label y test_data

The best thresholds by MCC and by F-score, and the AUC, are printed as JSON.
`),
	)
}

// Input converts flags into what is evaluated.
func (f Flag) Input(handle *gateway.Handle) (classifier.TestInput, error) {
	if f.Name != "" && f.Score != "" {
		return classifier.TestInput{}, common.UsageError("--name and --score are exclusive")
	}
	if f.Name == "" {
		return classifier.TestInput{Score: f.Score, Label: f.Label}, nil
	}
	if f.Label == "" {
		return classifier.TestInput{}, common.UsageError("--label is required")
	}

	opts := []classifier.Option{
		classifier.WithName(f.Name),
		classifier.WithFeatures(f.Feature, f.Label),
	}
	if f.Mode != "" {
		opts = append(opts, classifier.WithMode(f.Mode))
	}
	cls, err := classifier.New(handle, classifier.NewDecisionTree(), opts...)
	if err != nil {
		return classifier.TestInput{}, errors.Join(flarc.ErrUsage, err)
	}
	return classifier.TestInput{Classifier: cls}, nil
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

		in, err := flags.Input(handle)
		if err != nil {
			return err
		}

		var output *procedures.OutputDataset
		if flags.Output != "" {
			o := procedures.Tabular(flags.Output)
			output = &o
		}

		ev, err := classifier.Test(ctx, handle, dataset, in, output)
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}

		logger.Printf("best MCC: %s", ev.BestMCC)
		logger.Printf("best F: %s", ev.BestF)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(ev)
	}
}
