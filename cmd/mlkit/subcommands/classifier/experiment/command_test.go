package experiment_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/experiment"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/internal/commandline"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/logger"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/gateway/mock"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/youta-t/flarc"
)

func TestExperimentCommand(t *testing.T) {
	newCl := func(flag experiment.Flag, stdout *strings.Builder) commandline.MockCommandline[experiment.Flag] {
		return commandline.MockCommandline[experiment.Flag]{
			Fullname_: "mlkit classifier experiment",
			Flags_:    flag,
			Args_:     map[string][]string{experiment.ARG_DATASET: {"iris"}},
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		}
	}

	t.Run("it runs an experiment and prints its status", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, `{"status": {"folds": []}}`)
		stdout := new(strings.Builder)

		cl := newCl(experiment.Flag{
			Algorithm: "dt", Feature: []string{"a"}, Label: "y", Name: "tree", KFold: 3,
		}, stdout)
		if err := experiment.Task()(context.Background(), logger.Null(), gateway.NewHandle(gw), cl, []any{}); err != nil {
			t.Fatal(err)
		}

		if len(gw.Calls.PutProcedure) != 1 {
			t.Fatalf("number of calls: %d", len(gw.Calls.PutProcedure))
		}
		call := gw.Calls.PutProcedure[0]
		if call.Id != "tree_xp" {
			t.Errorf("procedure id: %s", call.Id)
		}
		ce := call.Procedure.Params.(procedures.ClassifierExperiment)
		if ce.KFold != 3 || ce.Algorithm != "dt" || ce.ModelFileURLPattern != "file://tree_xp_$runid.cls" {
			t.Errorf("unexpected procedure: %+v", ce)
		}

		var out experiment.Output
		if err := json.Unmarshal([]byte(stdout.String()), &out); err != nil {
			t.Fatalf("stdout is not JSON: %s", stdout.String())
		}
		if out.ID != "tree_xp" {
			t.Errorf("id: %s", out.ID)
		}
		if !strings.Contains(string(out.Status), "folds") {
			t.Errorf("status: %s", out.Status)
		}
	})

	t.Run("negative kfold is usage error", func(t *testing.T) {
		gw := mock.New(t)
		cl := newCl(experiment.Flag{
			Algorithm: "dt", Feature: []string{"a"}, Label: "y", KFold: -1,
		}, new(strings.Builder))
		err := experiment.Task()(context.Background(), logger.Null(), gateway.NewHandle(gw), cl, []any{})
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
