package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/opst/mldbkit/cmd/mldb_stub/apierr"
	"github.com/opst/mldbkit/cmd/mldb_stub/store"
	"github.com/opst/mldbkit/pkg/datasets"
)

func DeleteDatasetHandler(st *store.Store, paramId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(paramId)
		if err := st.DeleteDataset(id); err != nil {
			if errors.Is(err, store.ErrMissing) {
				return apierr.NotFound(fmt.Sprintf("dataset %s is not found", id))
			}
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// simple projections of a dataset. Other queries are answered with an empty table.
var selectFrom = regexp.MustCompile(`^SELECT (.+) FROM ([A-Za-z_][A-Za-z0-9_]*)$`)

// QueryHandler answers queries in "table" format: the first row is the header.
func QueryHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if f := c.QueryParam("format"); f != "" && f != "table" {
			return apierr.BadRequest(fmt.Sprintf("unsupported format: %s", f), nil)
		}
		q := strings.TrimSpace(c.QueryParam("q"))
		if q == "" {
			return apierr.BadRequest(`"q" is required`, nil)
		}

		m := selectFrom.FindStringSubmatch(q)
		if m == nil {
			return c.JSON(http.StatusOK, [][]any{{datasets.RowNameColumn}})
		}
		ds, err := st.Dataset(m[2])
		if err != nil {
			if errors.Is(err, store.ErrMissing) {
				return apierr.BadRequest(fmt.Sprintf("dataset %s is not found", m[2]), err)
			}
			return err
		}

		table, err := project(ds, m[1])
		if err != nil {
			return apierr.BadRequest("cannot select", err)
		}
		return c.JSON(http.StatusOK, table)
	}
}

// project selects columns from ds. "_rowName" always comes first.
func project(ds store.Dataset, columns string) ([][]any, error) {
	indices := []int{}
	if strings.TrimSpace(columns) == "*" {
		for i := range ds.Columns {
			indices = append(indices, i)
		}
	} else {
		at := map[string]int{}
		for i, c := range ds.Columns {
			at[c] = i
		}
		if i, ok := at[datasets.RowNameColumn]; ok {
			indices = append(indices, i)
		}
		for _, c := range strings.Split(columns, ",") {
			c = strings.TrimSpace(c)
			i, ok := at[c]
			if !ok {
				return nil, fmt.Errorf("unknown column: %s", c)
			}
			indices = append(indices, i)
		}
	}

	header := make([]any, 0, len(indices))
	for _, i := range indices {
		header = append(header, ds.Columns[i])
	}
	table := [][]any{header}
	for _, row := range ds.Rows {
		r := make([]any, 0, len(indices))
		for _, i := range indices {
			r = append(r, row[i])
		}
		table = append(table, r)
	}
	return table, nil
}
