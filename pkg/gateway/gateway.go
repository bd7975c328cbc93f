// Package gateway defines how mldbkit talks to the ML database service.
//
// Operations do not hold a Gateway directly. They read it from a Handle,
// which is configured once by the application.
package gateway

import (
	"context"
	"sync"

	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/procedures"
)

// Gateway submits requests to the ML database service.
type Gateway interface {
	// PutProcedure creates (or replaces) a procedure.
	//
	// # Args
	//
	// - context.Context
	//
	// - string: procedure id
	//
	// - procedures.Procedure: procedure body
	//
	// # Returns
	//
	// - Response: status code and body, whatever the status code is.
	//
	// - error: only when the request could not be done (transport or encoding failure).
	PutProcedure(ctx context.Context, id string, proc procedures.Procedure) (Response, error)

	// DeleteDataset deletes a dataset.
	//
	// Deleting a missing dataset is not an error.
	DeleteDataset(ctx context.Context, id string) error

	// Query runs a query and returns its result as a table.
	Query(ctx context.Context, q string) (Table, error)
}

// StatusCreated is the status code answered when a procedure is created.
const StatusCreated = 201

// Response is a raw response of the gateway.
type Response struct {
	StatusCode int
	Body       []byte
}

// Created reports whether the procedure has been created.
func (r Response) Created() bool {
	return r.StatusCode == StatusCreated
}

// Table is a result of query.
type Table struct {
	Columns []string

	// each row has values in the same order of Columns.
	Rows [][]any
}

// Handle holds the Gateway used by operations.
//
// It is set at most once. It is safe to read it from multiple goroutines.
type Handle struct {
	mu sync.RWMutex
	gw Gateway
}

// NewHandle returns a Handle holding gw.
//
// If gw is nil, the handle is left unset and can be set later with Set.
func NewHandle(gw Gateway) *Handle {
	return &Handle{gw: gw}
}

// Set configures the Gateway.
//
// # Returns
//
// - error: ConfigurationError when gw is nil or the handle has been set already.
func (h *Handle) Set(gw Gateway) error {
	if gw == nil {
		return xe.NewConfigurationError("gateway is nil")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gw != nil {
		return xe.NewConfigurationError("gateway has been set already")
	}
	h.gw = gw
	return nil
}

// Gateway returns the configured Gateway.
//
// # Returns
//
// - error: ConfigurationError when no Gateway is configured.
func (h *Handle) Gateway() (Gateway, error) {
	if h == nil {
		return nil, xe.NewConfigurationError("gateway handle is nil")
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.gw == nil {
		return nil, xe.NewConfigurationError(
			"connection to the ML database has not been set. Configure a gateway first",
		)
	}
	return h.gw, nil
}
