package main

import (
	"context"
	"os"
	"os/signal"
	"path"

	subcls "github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	subdataset "github.com/opst/mldbkit/cmd/mlkit/subcommands/dataset"
	subinit "github.com/opst/mldbkit/cmd/mlkit/subcommands/init"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/logger"
	subsample "github.com/opst/mldbkit/cmd/mlkit/subcommands/sample"
	subsplit "github.com/opst/mldbkit/cmd/mlkit/subcommands/split"
	subver "github.com/opst/mldbkit/cmd/mlkit/subcommands/version"
	"github.com/opst/mldbkit/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.ForCommand(os.Stderr, name)

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	split := try.To(subsplit.New()).OrFatal(logger)
	sample := try.To(subsample.New()).OrFatal(logger)
	dataset := try.To(subdataset.New()).OrFatal(logger)
	cls := try.To(subcls.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	mlkit := try.To(
		flarc.NewCommandGroup(
			"ML database client",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("split", split),
			flarc.WithSubcommand("sample", sample),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("classifier", cls),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, mlkit, flarc.WithHelp(true)))
}
