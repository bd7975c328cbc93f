package sample

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/sampling"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Label  string   `flag:"label" alias:"l" help:"Column of labels. Required."`
	Weight []string `flag:"weight" alias:"w" metavar:"LABEL=COUNT" help:"Number of rows sampled from rows with the label. Repeatable."`
	Output string   `flag:"output" alias:"o" help:"Name of the sampled dataset. Generated if not given."`
}

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Sample rows of a dataset per label.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true,
				Help: "Dataset to be sampled.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Create a dataset by sampling rows of each label, without replacement.

    {{ .Command }} --label species --weight setosa=100 --weight virginica=50 iris

The name of the created dataset is printed.
`),
	)
}

// ParseWeights parses "LABEL=COUNT" pairs.
//
// The label may contain "="; the count is after the last one.
func ParseWeights(pairs []string) (map[string]int, error) {
	weights := make(map[string]int, len(pairs))
	for _, p := range pairs {
		idx := strings.LastIndex(p, "=")
		if idx < 0 {
			return nil, fmt.Errorf("weight should be LABEL=COUNT: %s", p)
		}
		label, count := p[:idx], strings.TrimSpace(p[idx+1:])
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("count of %s is not integer: %s", label, count)
		}
		if _, ok := weights[label]; ok {
			return nil, fmt.Errorf("label %s is weighted twice", label)
		}
		weights[label] = n
	}
	return weights, nil
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

		weights, err := ParseWeights(flags.Weight)
		if err != nil {
			return errors.Join(flarc.ErrUsage, err)
		}

		var output *procedures.OutputDataset
		if flags.Output != "" {
			o := procedures.Tabular(flags.Output)
			output = &o
		}

		id, err := sampling.New(handle).Stratified(ctx, dataset, flags.Label, weights, output)
		if err != nil {
			if errors.Is(err, xe.ErrConfiguration) {
				return errors.Join(flarc.ErrUsage, err)
			}
			return err
		}

		logger.Printf("%s is sampled into %s.", dataset, id)
		_, err = fmt.Fprintln(cl.Stdout(), id)
		return err
	}
}
