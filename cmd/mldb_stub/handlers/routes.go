package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/opst/mldbkit/cmd/mldb_stub/store"
)

// Register routes of the stub on e.
func Register(e *echo.Echo, st *store.Store) {
	e.GET("/v1/procedures", ListProceduresHandler(st))
	e.PUT("/v1/procedures/:id", PutProcedureHandler(st, "id"))
	e.DELETE("/v1/datasets/:id", DeleteDatasetHandler(st, "id"))
	e.GET("/v1/query", QueryHandler(st))
}
