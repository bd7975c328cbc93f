// Package mock provides a Gateway recording calls, for tests.
package mock

import (
	"context"
	"testing"

	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
)

type PutProcedureArgs struct {
	Id        string
	Procedure procedures.Procedure
}

func New(t *testing.T) *MockGateway {
	return &MockGateway{t: t}
}

// MockGateway is a Gateway which delegates calls to Impl and records them into Calls.
//
// Calling a method of which Impl is not set fails the test.
type MockGateway struct {
	t    *testing.T
	Impl struct {
		PutProcedure  func(ctx context.Context, id string, proc procedures.Procedure) (gateway.Response, error)
		DeleteDataset func(ctx context.Context, id string) error
		Query         func(ctx context.Context, q string) (gateway.Table, error)
	}
	Calls struct {
		PutProcedure  []PutProcedureArgs
		DeleteDataset []string
		Query         []string
	}
}

var _ gateway.Gateway = &MockGateway{}

func (m *MockGateway) PutProcedure(ctx context.Context, id string, proc procedures.Procedure) (gateway.Response, error) {
	m.t.Helper()

	m.Calls.PutProcedure = append(m.Calls.PutProcedure, PutProcedureArgs{Id: id, Procedure: proc})
	if m.Impl.PutProcedure == nil {
		m.t.Fatal("PutProcedure is not ready to be called")
	}
	return m.Impl.PutProcedure(ctx, id, proc)
}

func (m *MockGateway) DeleteDataset(ctx context.Context, id string) error {
	m.t.Helper()

	m.Calls.DeleteDataset = append(m.Calls.DeleteDataset, id)
	if m.Impl.DeleteDataset == nil {
		m.t.Fatal("DeleteDataset is not ready to be called")
	}
	return m.Impl.DeleteDataset(ctx, id)
}

func (m *MockGateway) Query(ctx context.Context, q string) (gateway.Table, error) {
	m.t.Helper()

	m.Calls.Query = append(m.Calls.Query, q)
	if m.Impl.Query == nil {
		m.t.Fatal("Query is not ready to be called")
	}
	return m.Impl.Query(ctx, q)
}

// Answer returns an implementation of PutProcedure answering with status and body.
func Answer(status int, body string) func(context.Context, string, procedures.Procedure) (gateway.Response, error) {
	return func(context.Context, string, procedures.Procedure) (gateway.Response, error) {
		return gateway.Response{StatusCode: status, Body: []byte(body)}, nil
	}
}

// AnswerInOrder returns an implementation of PutProcedure answering with given responses, one by one.
//
// When calls exceed responses, the last one is repeated.
func AnswerInOrder(responses ...gateway.Response) func(context.Context, string, procedures.Procedure) (gateway.Response, error) {
	nth := 0
	return func(context.Context, string, procedures.Procedure) (gateway.Response, error) {
		resp := responses[min(nth, len(responses)-1)]
		nth += 1
		return resp, nil
	}
}
