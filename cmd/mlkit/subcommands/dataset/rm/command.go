package rm

import (
	"context"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/youta-t/flarc"
)

const ARG_DATASET = "DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete datasets on the service.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET, Required: true, Repeatable: true,
				Help: "Datasets to be deleted. Missing datasets are ignored.",
			},
		},
		common.NewTask(Task()),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		handle *gateway.Handle,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		gw, err := handle.Gateway()
		if err != nil {
			return err
		}
		for _, ds := range cl.Args()[ARG_DATASET] {
			if err := gw.DeleteDataset(ctx, ds); err != nil {
				return err
			}
			logger.Printf("%s is deleted.", ds)
		}
		return nil
	}
}
