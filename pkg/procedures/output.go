package procedures

import (
	"maps"

	"github.com/opst/mldbkit/pkg/names"
)

const TypeTabular = "tabular"

// OutputDataset tells where a procedure materializes its result.
//
// It may refer to an existing dataset (only ID), or fully specify a dataset
// to be created (ID, Type and type-specific Params).
type OutputDataset struct {
	ID     string         `json:"id"`
	Type   string         `json:"type,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// Tabular returns descriptor of tabular dataset with given id.
//
// Unknown columns are added to the dataset as they come.
func Tabular(id string) OutputDataset {
	return OutputDataset{
		ID:     id,
		Type:   TypeTabular,
		Params: map[string]any{"unknownColumns": "add"},
	}
}

// Normalize returns a copy of the descriptor with type-specific params forced.
//
// Tabular datasets require "unknownColumns": "add". Params of the receiver are not modified.
func (o OutputDataset) Normalize() OutputDataset {
	if o.Type != TypeTabular {
		return o
	}
	params := make(map[string]any, len(o.Params)+1)
	maps.Copy(params, o.Params)
	params["unknownColumns"] = "add"
	o.Params = params
	return o
}

// ResolveOutput determines the concrete descriptor to be submitted.
//
// # Args
//
// - out: descriptor given by the caller. It may be nil.
//
// - fallbackId: dataset id used when out is nil or has no ID. If empty, a new id is generated.
//
// # Returns
//
// - OutputDataset: normalized descriptor. Its ID is never empty.
// When out is nil, it is a tabular dataset named fallbackId (or a generated name).
func ResolveOutput(out *OutputDataset, fallbackId string) OutputDataset {
	if fallbackId == "" && (out == nil || out.ID == "") {
		fallbackId = names.Generate()
	}
	if out == nil {
		return Tabular(fallbackId)
	}
	resolved := out.Normalize()
	if resolved.ID == "" {
		resolved.ID = fallbackId
	}
	return resolved
}
