package classifier

import (
	classifier_experiment "github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/experiment"
	classifier_predict "github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/predict"
	classifier_eval "github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/test"
	classifier_train "github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/train"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	train, err := classifier_train.New()
	if err != nil {
		return nil, err
	}
	predict, err := classifier_predict.New()
	if err != nil {
		return nil, err
	}
	test, err := classifier_eval.New()
	if err != nil {
		return nil, err
	}
	experiment, err := classifier_experiment.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Train, apply and evaluate classifiers.",
		struct{}{},
		flarc.WithSubcommand("train", train),
		flarc.WithSubcommand("predict", predict),
		flarc.WithSubcommand("test", test),
		flarc.WithSubcommand("experiment", experiment),
	)
}
