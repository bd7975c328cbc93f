package train

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/classifier"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Algorithm string   `flag:"algorithm" alias:"a" metavar:"dt|rf|glz" help:"Algorithm of the classifier."`
	Feature   []string `flag:"feature" alias:"f" help:"Column used as a feature. Repeatable. Required."`
	Label     string   `flag:"label" alias:"l" help:"Column of labels. Required."`
	Name      string   `flag:"name" alias:"n" help:"Name of the classifier function. (default: name of the algorithm)"`
	Mode      string   `flag:"mode" metavar:"boolean|categorical|regression" help:"Mode of the classifier."`
}

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Train a classifier with a dataset.",
		Flag{
			Algorithm: "dt",
			Mode:      classifier.DefaultMode,
		},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset used to train.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Train a classifier, and register it as a function of the service.

    {{ .Command }} --algorithm rf --feature a --feature b --label y --name my_rf training_data

The configuration of the trained classifier is printed.
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

		if err := cls.Fit(ctx, dataset, flags.Feature, flags.Label); err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}

		logger.Printf("classifier %s is trained with %s.", cls.Name(), dataset)
		_, err = fmt.Fprintln(cl.Stdout(), cls.String())
		return err
	}
}
