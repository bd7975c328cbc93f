package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/mldbkit/cmd/mldb_stub/apierr"
	"github.com/opst/mldbkit/cmd/mldb_stub/store"
	"github.com/opst/mldbkit/pkg/procedures"
)

type procedureBody struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// ProcedureResponse is the body answered when a procedure is created.
type ProcedureResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status any    `json:"status,omitempty"`
}

type firstRun struct {
	FirstRun struct {
		Status any `json:"status"`
	} `json:"firstRun"`
}

// decode params into the payload type of the procedure.
func decodeParams(body procedureBody) (any, error) {
	var params any
	switch body.Type {
	case procedures.TypeTransform:
		params = new(procedures.Transform)
	case procedures.TypeImportText:
		params = new(procedures.ImportText)
	case procedures.TypeExportCSV:
		params = new(procedures.ExportCSV)
	case procedures.TypeClassifierTrain:
		params = new(procedures.ClassifierTrain)
	case procedures.TypeClassifierTest:
		params = new(procedures.ClassifierTest)
	case procedures.TypeClassifierExperiment:
		params = new(procedures.ClassifierExperiment)
	case "":
		return nil, errors.New(`"type" is required`)
	default:
		return nil, fmt.Errorf("unknown procedure type: %s", body.Type)
	}
	if len(body.Params) == 0 {
		return nil, errors.New(`"params" is required`)
	}
	if err := json.Unmarshal(body.Params, params); err != nil {
		return nil, err
	}
	return params, nil
}

// PutProcedureHandler records the procedure and runs its effect on datasets.
//
// transform and import.text run on creation create their output dataset.
// classifier.test run on creation answers an evaluation of the first run.
func PutProcedureHandler(st *store.Store, paramId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(paramId)

		var body procedureBody
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
			return apierr.BadRequest("procedure body is not JSON", err)
		}
		params, err := decodeParams(body)
		if err != nil {
			return apierr.BadRequest("procedure is invalid", err)
		}

		resp := ProcedureResponse{ID: id, Type: body.Type}
		switch p := params.(type) {
		case *procedures.Transform:
			if p.RunOnCreation {
				st.PutDataset(p.OutputDataset.ID, store.Dataset{
					Columns: []string{"_rowName"}, Rows: [][]any{},
				})
			}
		case *procedures.ImportText:
			if p.RunOnCreation != nil && *p.RunOnCreation {
				ds, err := store.Load(*p)
				if err != nil {
					return apierr.BadRequest("cannot import", err)
				}
				st.PutDataset(p.OutputDataset.ID, ds)
			}
		case *procedures.ClassifierTest:
			if p.RunOnCreation {
				status := firstRun{}
				status.FirstRun.Status = syntheticEvaluation()
				resp.Status = status
			}
		case *procedures.ClassifierExperiment:
			if p.RunOnCreation {
				folds := make([]any, max(p.KFold, 1))
				for i := range folds {
					folds[i] = map[string]any{"resultsTest": syntheticEvaluation()}
				}
				resp.Status = map[string]any{"folds": folds}
			}
		}

		st.PutProcedure(id, procedures.Procedure{Type: body.Type, Params: params})
		return c.JSON(http.StatusCreated, resp)
	}
}

func syntheticEvaluation() map[string]any {
	threshold := map[string]any{
		"threshold": 0.5,
		"mcc":       0.0,
		"gain":      1.0,
		"pr":        map[string]any{"recall": 0.5, "precision": 0.5, "f": 0.5},
		"counts": map[string]any{
			"truePositives": 0, "trueNegatives": 0,
			"falsePositives": 0, "falseNegatives": 0,
		},
	}
	return map[string]any{"bestMcc": threshold, "bestF": threshold, "auc": 0.5}
}

// ListProceduresHandler answers ids of recorded procedures.
func ListProceduresHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, st.ProcedureIds())
	}
}
