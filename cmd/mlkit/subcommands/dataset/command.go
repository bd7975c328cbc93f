package dataset

import (
	dataset_export "github.com/opst/mldbkit/cmd/mlkit/subcommands/dataset/export"
	dataset_import "github.com/opst/mldbkit/cmd/mlkit/subcommands/dataset/importing"
	dataset_rm "github.com/opst/mldbkit/cmd/mlkit/subcommands/dataset/rm"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	imp, err := dataset_import.New()
	if err != nil {
		return nil, err
	}
	exp, err := dataset_export.New()
	if err != nil {
		return nil, err
	}
	rm, err := dataset_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Move datasets between local files and the service.",
		struct{}{},
		flarc.WithSubcommand("import", imp),
		flarc.WithSubcommand("export", exp),
		flarc.WithSubcommand("rm", rm),
	)
}
