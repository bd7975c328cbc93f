package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/classifier"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Algorithm  string   `flag:"algorithm" alias:"a" metavar:"dt|rf|glz" help:"Algorithm of the classifier."`
	Feature    []string `flag:"feature" alias:"f" help:"Column used as a feature. Repeatable. Required."`
	Label      string   `flag:"label" alias:"l" help:"Column of labels. Required."`
	Name       string   `flag:"name" alias:"n" help:"Name of the classifier. (default: name of the algorithm)"`
	Mode       string   `flag:"mode" metavar:"boolean|categorical|regression" help:"Mode of the classifier."`
	KFold      int      `flag:"kfold" alias:"k" help:"Number of folds. 0 lets the service decide."`
	Experiment string   `flag:"experiment" help:"Name of the experiment. (default: <name>_xp)"`
}

const ARG_DATASET = "DATASET"

// Output is what the command prints.
type Output struct {
	ID     string          `json:"id"`
	Status json.RawMessage `json:"status"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Train and test a classifier over folds of a dataset.",
		Flag{
			Algorithm: "dt",
			Mode:      classifier.DefaultMode,
		},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset used in the experiment.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Run a cross-validation experiment of a classifier.

The experiment id and the status reported by the service are printed as JSON.
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

		alg, err := classifier.AlgorithmOf(flags.Algorithm)
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}
		opts := []classifier.Option{}
		if flags.Name != "" {
			opts = append(opts, classifier.WithName(flags.Name))
		}
		if flags.Mode != "" {
			opts = append(opts, classifier.WithMode(flags.Mode))
		}
		cls, err := classifier.New(handle, alg, opts...)
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}

		result, err := cls.Experiment(ctx, dataset, flags.Feature, flags.Label, flags.KFold, flags.Experiment)
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}

		logger.Printf("experiment %s is done.", result.ID)
		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(Output{ID: result.ID, Status: result.Status})
	}
}
