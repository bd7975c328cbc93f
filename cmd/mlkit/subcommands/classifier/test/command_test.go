package test_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/classifier/test"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/internal/commandline"
	"github.com/opst/mldbkit/cmd/mlkit/subcommands/logger"
	"github.com/opst/mldbkit/pkg/classifier"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/gateway/mock"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/youta-t/flarc"
)

const evaluated = `{
	"status": {"firstRun": {"status": {
		"bestMcc": {"threshold": 0.5, "mcc": 0.8, "pr": {"f": 0.9}},
		"bestF": {"threshold": 0.4, "mcc": 0.7, "pr": {"f": 0.95}},
		"auc": 0.93
	}}}
}`

func TestTestCommand(t *testing.T) {
	type When struct {
		flag test.Flag
	}
	type Then struct {
		procedureId string
		testingData string
		err         error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			gw := mock.New(t)
			gw.Impl.PutProcedure = mock.Answer(201, evaluated)

			stdout := new(strings.Builder)
			cl := commandline.MockCommandline[test.Flag]{
				Fullname_: "mlkit classifier test",
				Flags_:    when.flag,
				Args_:     map[string][]string{test.ARG_DATASET: {"iris"}},
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
			}

			err := test.Task()(context.Background(), logger.Null(), gateway.NewHandle(gw), cl, []any{})
			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: %v", err)
				}
				if len(gw.Calls.PutProcedure) != 0 {
					t.Errorf("unexpected calls: %+v", gw.Calls.PutProcedure)
				}
				return
			} else if err != nil {
				t.Fatal(err)
			}

			if len(gw.Calls.PutProcedure) != 1 {
				t.Fatalf("number of calls: %d", len(gw.Calls.PutProcedure))
			}
			call := gw.Calls.PutProcedure[0]
			if call.Id != then.procedureId {
				t.Errorf("procedure id: (actual, expected) = (%s, %s)", call.Id, then.procedureId)
			}
			ct := call.Procedure.Params.(procedures.ClassifierTest)
			if ct.TestingData != then.testingData {
				t.Errorf("testingData:\n===actual===\n%s\n===expected===\n%s", ct.TestingData, then.testingData)
			}

			var ev classifier.Evaluation
			if err := json.Unmarshal([]byte(stdout.String()), &ev); err != nil {
				t.Fatalf("stdout is not JSON: %s", stdout.String())
			}
			if ev.AUC != 0.93 || ev.BestMCC.MCC != 0.8 || ev.BestF.PR.F != 0.95 {
				t.Errorf("unexpected evaluation: %+v", ev)
			}
		}
	}

	t.Run("it evaluates a classifier", theory(
		When{flag: test.Flag{Name: "my_rf", Feature: []string{"a", "b"}, Label: "y", Mode: "boolean"}},
		Then{
			procedureId: "my_rf_test",
			testingData: "SELECT my_rf({{\"a\", \"b\"} AS features})[score] AS score, y AS label FROM iris",
		},
	))

	t.Run("it evaluates a score expression", theory(
		When{flag: test.Flag{Score: "a * 2", Label: "y"}},
		Then{
			procedureId: "iris_test",
			testingData: "SELECT a * 2 AS score, y AS label FROM iris",
		},
	))

	t.Run("name and score are exclusive", theory(
		When{flag: test.Flag{Name: "my_rf", Score: "a", Label: "y"}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("score without label is usage error", theory(
		When{flag: test.Flag{Score: "a"}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("nothing to be evaluated is usage error", theory(
		When{flag: test.Flag{Label: "y"}},
		Then{err: flarc.ErrUsage},
	))
}
