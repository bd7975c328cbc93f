package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/opst/mldbkit/pkg/classifier"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/gateway/mock"
	"github.com/opst/mldbkit/pkg/procedures"
)

func TestAlgorithms(t *testing.T) {
	t.Run("decision tree", func(t *testing.T) {
		dt := classifier.NewDecisionTree()
		conf := dt.Configuration()["dt"].(map[string]any)
		if conf["type"] != "decision_tree" || conf["max_depth"] != -1 || conf["update_alg"] != "prob" {
			t.Errorf("unexpected configuration: %+v", conf)
		}
	})

	t.Run("random forest bags decision trees", func(t *testing.T) {
		rf := classifier.NewRandomForest()
		conf := rf.Configuration()["rf"].(map[string]any)
		if conf["type"] != "bagging" || conf["num_bags"] != 10 {
			t.Errorf("unexpected configuration: %+v", conf)
		}
		weak := conf["weak_learner"].(map[string]any)
		if weak["type"] != "decision_tree" || weak["update_alg"] != "gentle" {
			t.Errorf("unexpected weak learner: %+v", weak)
		}
	})

	t.Run("logistic regression is glz", func(t *testing.T) {
		lr := classifier.NewLogisticRegression()
		conf := lr.Configuration()["logisticRegression"].(map[string]any)
		if conf["type"] != "glz" || conf["add_bias"] != true || conf["feature_proportion"] != 1.0 {
			t.Errorf("unexpected configuration: %+v", conf)
		}
	})

	t.Run("feature proportion out of range is ConfigurationError", func(t *testing.T) {
		for _, p := range []float64{-0.1, 1.1} {
			lr := classifier.NewLogisticRegression()
			lr.FeatureProportion = p
			if _, err := classifier.New(gateway.NewHandle(nil), lr); !errors.Is(err, xe.ErrConfiguration) {
				t.Errorf("proportion %v: unexpected error: %v", p, err)
			}
		}
	})
}

func TestAlgorithmOf(t *testing.T) {
	for key, expected := range map[string]string{
		"dt":                 "dt",
		"rf":                 "rf",
		"glz":                "logisticRegression",
		"logisticRegression": "logisticRegression",
	} {
		alg, err := classifier.AlgorithmOf(key)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		if alg.Key() != expected {
			t.Errorf("%s: (actual, expected) = (%s, %s)", key, alg.Key(), expected)
		}
	}

	if _, err := classifier.AlgorithmOf("svm"); !errors.Is(err, xe.ErrConfiguration) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("name and mode have defaults", func(t *testing.T) {
		c, err := classifier.New(gateway.NewHandle(nil), classifier.NewRandomForest())
		if err != nil {
			t.Fatal(err)
		}
		if c.Name() != "RandomForestClassifier" || c.Mode() != "boolean" {
			t.Errorf("unexpected: (name, mode) = (%s, %s)", c.Name(), c.Mode())
		}
	})

	t.Run("options are applied", func(t *testing.T) {
		c, err := classifier.New(
			gateway.NewHandle(nil), classifier.NewDecisionTree(),
			classifier.WithName("cls"), classifier.WithMode("categorical"),
		)
		if err != nil {
			t.Fatal(err)
		}
		if c.Name() != "cls" || c.Mode() != "categorical" {
			t.Errorf("unexpected: (name, mode) = (%s, %s)", c.Name(), c.Mode())
		}
	})

	t.Run("String shows configuration", func(t *testing.T) {
		c, err := classifier.New(gateway.NewHandle(nil), classifier.NewDecisionTree())
		if err != nil {
			t.Fatal(err)
		}
		actual := map[string]any{}
		if err := json.Unmarshal([]byte(c.String()), &actual); err != nil {
			t.Fatalf("not a json: %s", c.String())
		}
		if _, ok := actual["dt"]; !ok {
			t.Errorf("unexpected: %s", c.String())
		}
	})
}

func TestFit(t *testing.T) {
	t.Run("it submits classifier.train under its name", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, `{}`)
		c, err := classifier.New(gateway.NewHandle(gw), classifier.NewDecisionTree(), classifier.WithName("cls"))
		if err != nil {
			t.Fatal(err)
		}

		if err := c.Fit(context.Background(), "iris_train", []string{"a", "b"}, "y"); err != nil {
			t.Fatal(err)
		}

		if len(gw.Calls.PutProcedure) != 1 {
			t.Fatalf("unexpected number of calls: %d", len(gw.Calls.PutProcedure))
		}
		call := gw.Calls.PutProcedure[0]
		if call.Id != "cls" {
			t.Errorf("wrong procedure id: %s", call.Id)
		}
		expected := procedures.ClassifierTrain{
			TrainingData:  "SELECT {\"a\", \"b\"} AS features, y AS label FROM iris_train",
			Algorithm:     "dt",
			Configuration: classifier.NewDecisionTree().Configuration(),
			Mode:          "boolean",
			ModelFileURL:  "file://cls.cls",
			FunctionName:  "cls",
			RunOnCreation: true,
		}
		if !reflect.DeepEqual(call.Procedure.Params, expected) {
			t.Errorf("unmatch:\n===actual===\n%+v\n===expected===\n%+v", call.Procedure.Params, expected)
		}

		features, label := c.Features()
		if !reflect.DeepEqual(features, []string{"a", "b"}) || label != "y" {
			t.Errorf("features are not remembered: (%v, %s)", features, label)
		}
	})

	t.Run("non-201 is RemoteOperationError and the classifier stays unfitted", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(400, `{"error":"bad"}`)
		c, err := classifier.New(gateway.NewHandle(gw), classifier.NewDecisionTree())
		if err != nil {
			t.Fatal(err)
		}

		if err := c.Fit(context.Background(), "iris", []string{"a"}, "y"); !errors.Is(err, xe.ErrRemoteOperation) {
			t.Errorf("unexpected error: %v", err)
		}
		if _, err := c.Predict(context.Background(), "iris", nil); !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no features is ConfigurationError", func(t *testing.T) {
		gw := mock.New(t)
		c, err := classifier.New(gateway.NewHandle(gw), classifier.NewDecisionTree())
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Fit(context.Background(), "iris", nil, "y"); !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(gw.Calls.PutProcedure) != 0 {
			t.Errorf("remote calls are made")
		}
	})
}

func TestPredict(t *testing.T) {
	t.Run("it transforms dataset with the classifier function", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, `{}`)
		c, err := classifier.New(
			gateway.NewHandle(gw), classifier.NewRandomForest(),
			classifier.WithName("cls"), classifier.WithFeatures([]string{"a", "b"}, "y"),
		)
		if err != nil {
			t.Fatal(err)
		}

		id, err := c.Predict(context.Background(), "iris_test", &procedures.OutputDataset{ID: "predicted"})
		if err != nil {
			t.Fatal(err)
		}
		if id != "predicted" {
			t.Errorf("unexpected id: %s", id)
		}

		call := gw.Calls.PutProcedure[0]
		if call.Id != "cls_predict" {
			t.Errorf("wrong procedure id: %s", call.Id)
		}
		tr := call.Procedure.Params.(procedures.Transform)
		expected := "SELECT cls({{\"a\", \"b\"} AS features}) AS predict FROM iris_test"
		if tr.InputData != expected {
			t.Errorf("unmatch:\n===actual===\n%s\n===expected===\n%s", tr.InputData, expected)
		}
	})

	t.Run("unfitted classifier can not predict", func(t *testing.T) {
		gw := mock.New(t)
		c, err := classifier.New(gateway.NewHandle(gw), classifier.NewDecisionTree())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Predict(context.Background(), "iris", nil); !errors.Is(err, xe.ErrConfiguration) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(gw.Calls.PutProcedure) != 0 {
			t.Errorf("remote calls are made")
		}
	})
}

const testResponse = `{
	"id": "cls_test",
	"status": {
		"firstRun": {
			"status": {
				"auc": 0.91,
				"bestMcc": {
					"pr": {"recall": 0.8, "precision": 0.7, "f": 0.75},
					"mcc": 0.6, "gain": 1.5, "threshold": 0.4,
					"counts": {"truePositives": 8, "trueNegatives": 9, "falsePositives": 3, "falseNegatives": 2}
				},
				"bestF": {
					"pr": {"recall": 0.9, "precision": 0.65, "f": 0.77},
					"mcc": 0.55, "gain": 1.4, "threshold": 0.3,
					"counts": {"truePositives": 9, "trueNegatives": 7, "falsePositives": 5, "falseNegatives": 1}
				}
			}
		}
	}
}`

func TestTest(t *testing.T) {
	t.Run("it evaluates a fitted classifier", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, testResponse)
		h := gateway.NewHandle(gw)
		c, err := classifier.New(
			h, classifier.NewDecisionTree(),
			classifier.WithName("cls"), classifier.WithFeatures([]string{"a", "b"}, "y"),
		)
		if err != nil {
			t.Fatal(err)
		}

		ev, err := classifier.Test(context.Background(), h, "iris_test", classifier.TestInput{Classifier: c}, nil)
		if err != nil {
			t.Fatal(err)
		}

		if ev.AUC != 0.91 || ev.BestMCC.MCC != 0.6 || ev.BestMCC.PR.Recall != 0.8 ||
			ev.BestF.Threshold != 0.3 || ev.BestF.Counts.FalseNegatives != 1 {
			t.Errorf("unexpected evaluation: %+v", ev)
		}

		call := gw.Calls.PutProcedure[0]
		if call.Id != "cls_test" {
			t.Errorf("wrong procedure id: %s", call.Id)
		}
		ct := call.Procedure.Params.(procedures.ClassifierTest)
		expected := "SELECT cls({{\"a\", \"b\"} AS features})[score] AS score, y AS label FROM iris_test"
		if ct.TestingData != expected {
			t.Errorf("unmatch:\n===actual===\n%s\n===expected===\n%s", ct.TestingData, expected)
		}
		if ct.Mode != "boolean" {
			t.Errorf("mode is not passed: %s", ct.Mode)
		}
	})

	t.Run("it evaluates a score expression", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, testResponse)
		h := gateway.NewHandle(gw)

		_, err := classifier.Test(
			context.Background(), h, "scored",
			classifier.TestInput{Score: "s", Label: "y"},
			&procedures.OutputDataset{ID: "evaluated", Type: "tabular"},
		)
		if err != nil {
			t.Fatal(err)
		}

		call := gw.Calls.PutProcedure[0]
		if call.Id != "scored_test" {
			t.Errorf("wrong procedure id: %s", call.Id)
		}
		ct := call.Procedure.Params.(procedures.ClassifierTest)
		if ct.TestingData != "SELECT s AS score, y AS label FROM scored" {
			t.Errorf("unexpected testing data: %s", ct.TestingData)
		}
		if ct.Mode != "" {
			t.Errorf("mode should be omitted: %s", ct.Mode)
		}
		if ct.OutputDataset == nil || ct.OutputDataset.ID != "evaluated" {
			t.Errorf("output dataset is not passed: %+v", ct.OutputDataset)
		}
	})

	for name, in := range map[string]classifier.TestInput{
		"score without label": {Score: "s"},
		"nothing":             {},
	} {
		t.Run(name+" is ConfigurationError", func(t *testing.T) {
			gw := mock.New(t)
			_, err := classifier.Test(context.Background(), gateway.NewHandle(gw), "d", in, nil)
			if !errors.Is(err, xe.ErrConfiguration) {
				t.Errorf("unexpected error: %v", err)
			}
			if len(gw.Calls.PutProcedure) != 0 {
				t.Errorf("remote calls are made")
			}
		})
	}

	t.Run("response without result is RemoteOperationError", func(t *testing.T) {
		gw := mock.New(t)
		gw.Impl.PutProcedure = mock.Answer(201, `{"status": {}}`)
		_, err := classifier.Test(
			context.Background(), gateway.NewHandle(gw), "d",
			classifier.TestInput{Score: "s", Label: "y"}, nil,
		)
		if !errors.Is(err, xe.ErrRemoteOperation) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestExperiment(t *testing.T) {
	gw := mock.New(t)
	gw.Impl.PutProcedure = mock.Answer(201, `{"id": "cls_xp", "status": {"folds": []}}`)
	c, err := classifier.New(gateway.NewHandle(gw), classifier.NewLogisticRegression(), classifier.WithName("cls"))
	if err != nil {
		t.Fatal(err)
	}

	result, err := c.Experiment(context.Background(), "iris", []string{"a"}, "y", 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.ID != "cls_xp" || !strings.Contains(string(result.Status), "folds") {
		t.Errorf("unexpected result: %+v", result)
	}

	call := gw.Calls.PutProcedure[0]
	if call.Id != "cls_xp" {
		t.Errorf("wrong procedure id: %s", call.Id)
	}
	ce := call.Procedure.Params.(procedures.ClassifierExperiment)
	if ce.KFold != 3 || ce.Algorithm != "logisticRegression" || !ce.OutputAccuracyDataset {
		t.Errorf("unexpected payload: %+v", ce)
	}
	if ce.TrainingData != "SELECT {\"a\"} AS features, y AS label FROM iris" {
		t.Errorf("unexpected training data: %s", ce.TrainingData)
	}
}
