package split_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/gateway/mock"
	"github.com/opst/mldbkit/pkg/procedures"
	"github.com/opst/mldbkit/pkg/split"
	"github.com/opst/mldbkit/pkg/utils/pointer"
)

func TestThresholds(t *testing.T) {
	for _, testcase := range []struct {
		train, test                 float64
		expectedTrain, expectedTest int
	}{
		{0.75, 0.25, 75, 75},
		{0.7, 0.3, 70, 70},
		{0.5, 0.2, 50, 80},
		{0.29, 0.71, 29, 29},
		{0, 1, 0, 0},
		{1, 0, 100, 100},

		// rounded independently: bucket 12 belongs to both
		{0.125, 0.875, 13, 12},
	} {
		train, test := split.Thresholds(testcase.train, testcase.test)
		if train != testcase.expectedTrain || test != testcase.expectedTest {
			t.Errorf(
				"Thresholds(%v, %v): (actual, expected) = ((%d, %d), (%d, %d))",
				testcase.train, testcase.test, train, test, testcase.expectedTrain, testcase.expectedTest,
			)
		}
	}
}

func TestOptions_Sizes(t *testing.T) {
	for _, testcase := range []struct{ train, test float64 }{
		{0.7, 0.3},
		{0.9, 0.1},
		{0.35, 0.65},
		{0.5, 0.5},
	} {
		train, test, err := split.Options{
			TrainSize: pointer.Ref(testcase.train), TestSize: pointer.Ref(testcase.test),
		}.Sizes()
		if err != nil {
			t.Errorf("Sizes(%v, %v): unexpected error: %v", testcase.train, testcase.test, err)
			continue
		}
		if train != testcase.train || test != testcase.test {
			t.Errorf(
				"Sizes(%v, %v): (actual, expected) = ((%v, %v), (%v, %v))",
				testcase.train, testcase.test, train, test, testcase.train, testcase.test,
			)
		}
	}
}

func inputData(t *testing.T, proc procedures.Procedure) string {
	t.Helper()
	tr, ok := proc.Params.(procedures.Transform)
	if !ok {
		t.Fatalf("not a transform: %+v", proc)
	}
	return tr.InputData
}

func outputId(t *testing.T, proc procedures.Procedure) string {
	t.Helper()
	tr, ok := proc.Params.(procedures.Transform)
	if !ok {
		t.Fatalf("not a transform: %+v", proc)
	}
	return tr.OutputDataset.ID
}

func TestSplit(t *testing.T) {
	type When struct {
		dataset string
		options split.Options
	}
	type Then struct {
		trainQuery string
		testQuery  string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			gw := mock.New(t)
			gw.Impl.PutProcedure = mock.Answer(201, `{}`)

			testee := split.New(gateway.NewHandle(gw))
			result, err := testee.Split(context.Background(), when.dataset, when.options)
			if err != nil {
				t.Fatal(err)
			}

			calls := gw.Calls.PutProcedure
			if len(calls) != 2 {
				t.Fatalf("unexpected number of calls: %d", len(calls))
			}
			for _, c := range calls {
				if c.Id != split.ProcedureId {
					t.Errorf("wrong procedure id: %s", c.Id)
				}
				if c.Procedure.Type != procedures.TypeTransform {
					t.Errorf("wrong procedure type: %s", c.Procedure.Type)
				}
				tr := c.Procedure.Params.(procedures.Transform)
				if !tr.RunOnCreation {
					t.Errorf("it should run on creation")
				}
				if tr.OutputDataset.Type != procedures.TypeTabular {
					t.Errorf("output should be tabular: %+v", tr.OutputDataset)
				}
			}

			if q := inputData(t, calls[0].Procedure); q != then.trainQuery {
				t.Errorf("train query:\n===actual===\n%s\n===expected===\n%s", q, then.trainQuery)
			}
			if q := inputData(t, calls[1].Procedure); q != then.testQuery {
				t.Errorf("test query:\n===actual===\n%s\n===expected===\n%s", q, then.testQuery)
			}

			if id := outputId(t, calls[0].Procedure); id != result.Train {
				t.Errorf("train output: (actual, expected) = (%s, %s)", id, result.Train)
			}
			if id := outputId(t, calls[1].Procedure); id != result.Test {
				t.Errorf("test output: (actual, expected) = (%s, %s)", id, result.Test)
			}
			if result.Train == result.Test {
				t.Errorf("train and test have same name: %s", result.Train)
			}
			if when.options.TrainName != "" && result.Train != when.options.TrainName {
				t.Errorf("train name is not used: %s", result.Train)
			}
			if when.options.TestName != "" && result.Test != when.options.TestName {
				t.Errorf("test name is not used: %s", result.Test)
			}
		}
	}

	t.Run("no sizes means 0.75/0.25", theory(
		When{dataset: "iris", options: split.Options{}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 75",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 75",
		},
	))

	t.Run("explicit 0.75/0.25 is same as no sizes", theory(
		When{dataset: "iris", options: split.Options{
			TestSize: pointer.Ref(0.25), TrainSize: pointer.Ref(0.75),
		}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 75",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 75",
		},
	))

	t.Run("only test size means train size is its complement", theory(
		When{dataset: "iris", options: split.Options{TestSize: pointer.Ref(0.3)}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 70",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 70",
		},
	))

	t.Run("only train size means test size is its complement", theory(
		When{dataset: "iris", options: split.Options{TrainSize: pointer.Ref(0.6)}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 60",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 60",
		},
	))

	t.Run("sizes less than 1.0 in sum leave a gap", theory(
		When{dataset: "iris", options: split.Options{
			TestSize: pointer.Ref(0.2), TrainSize: pointer.Ref(0.5),
			TrainName: "iris_train", TestName: "iris_test",
		}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 50",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 80",
		},
	))

	t.Run("sum with a float error is accepted", theory(
		When{dataset: "iris", options: split.Options{
			TestSize: pointer.Ref(0.7), TrainSize: pointer.Ref(0.3),
		}},
		Then{
			trainQuery: "SELECT * FROM iris WHERE rowHash() % 100 < 30",
			testQuery:  "SELECT * FROM iris WHERE rowHash() % 100 >= 30",
		},
	))
}

func TestSplit_Error(t *testing.T) {
	t.Run("sizes over 1.0 in sum is ConfigurationError, without remote calls", func(t *testing.T) {
		gw := mock.New(t)
		testee := split.New(gateway.NewHandle(gw))

		_, err := testee.Split(context.Background(), "iris", split.Options{
			TestSize: pointer.Ref(0.6), TrainSize: pointer.Ref(0.6),
		})
		if !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(gw.Calls.PutProcedure) != 0 {
			t.Errorf("remote calls are made: %+v", gw.Calls.PutProcedure)
		}
	})

	for name, opts := range map[string]split.Options{
		"negative test size":             {TestSize: pointer.Ref(-0.1)},
		"train size over 1.0":            {TrainSize: pointer.Ref(1.5)},
		"sizes slightly over 1.0 in sum": {TrainSize: pointer.Ref(0.5), TestSize: pointer.Ref(0.5000000005)},
	} {
		t.Run(name+" is ConfigurationError", func(t *testing.T) {
			gw := mock.New(t)
			testee := split.New(gateway.NewHandle(gw))

			if _, err := testee.Split(context.Background(), "iris", opts); !errors.Is(err, xe.ErrConfiguration) {
				t.Errorf("unexpected error: %v", err)
			}
			if len(gw.Calls.PutProcedure) != 0 {
				t.Errorf("remote calls are made: %+v", gw.Calls.PutProcedure)
			}
		})
	}

	t.Run("empty dataset is ConfigurationError", func(t *testing.T) {
		gw := mock.New(t)
		testee := split.New(gateway.NewHandle(gw))
		if _, err := testee.Split(context.Background(), "", split.Options{}); !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unset gateway is ConfigurationError", func(t *testing.T) {
		testee := split.New(gateway.NewHandle(nil))
		if _, err := testee.Split(context.Background(), "iris", split.Options{}); !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("when train dataset can not be created, test dataset is not requested", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(400, `{"error":"no such dataset"}`)
		testee := split.New(gateway.NewHandle(gw))

		_, err := testee.Split(context.Background(), "iris", split.Options{})

		var roe *xe.RemoteOperationError
		if !errors.As(err, &roe) {
			t.Fatalf("unexpected error: %v", err)
		}
		if roe.StatusCode != 400 || !strings.Contains(string(roe.Body), "no such dataset") {
			t.Errorf("error does not tell the response: %+v", roe)
		}
		var ise *xe.IncompleteSplitError
		if errors.As(err, &ise) {
			t.Errorf("nothing has been created, but incomplete: %v", err)
		}
		if len(gw.Calls.PutProcedure) != 1 {
			t.Errorf("unexpected number of calls: %d", len(gw.Calls.PutProcedure))
		}
	})

	t.Run("when test dataset can not be created, train dataset is reported", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.AnswerInOrder(
			gateway.Response{StatusCode: 201, Body: []byte(`{}`)},
			gateway.Response{StatusCode: 500, Body: []byte(`{"error":"internal"}`)},
		)
		testee := split.New(gateway.NewHandle(gw))

		result, err := testee.Split(context.Background(), "iris", split.Options{TrainName: "iris_train"})

		var ise *xe.IncompleteSplitError
		if !errors.As(err, &ise) {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ise.Created) != 1 || ise.Created[0] != "iris_train" {
			t.Errorf("created datasets: %v", ise.Created)
		}
		if !errors.Is(err, xe.ErrRemoteOperation) {
			t.Errorf("cause is not RemoteOperationError: %v", err)
		}
		if result.Train != "iris_train" || result.Test != "" {
			t.Errorf("unexpected result: %+v", result)
		}
		if len(gw.Calls.PutProcedure) != 2 {
			t.Errorf("unexpected number of calls: %d", len(gw.Calls.PutProcedure))
		}
	})

	t.Run("transport error is passed through", func(t *testing.T) {
		expectedErr := errors.New("fake: connection refused")
		gw := mock.New(t)
		gw.Impl.PutProcedure = func(context.Context, string, procedures.Procedure) (gateway.Response, error) {
			return gateway.Response{}, expectedErr
		}
		testee := split.New(gateway.NewHandle(gw))

		if _, err := testee.Split(context.Background(), "iris", split.Options{}); !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
