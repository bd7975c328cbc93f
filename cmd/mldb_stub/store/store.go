// Package store keeps procedures and datasets of the stub in memory.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"sync"

	"github.com/opst/mldbkit/pkg/datasets"
	"github.com/opst/mldbkit/pkg/procedures"
)

var ErrMissing = errors.New("missing")

// Dataset is a table held by the stub.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// Store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	procedures map[string]procedures.Procedure
	datasets   map[string]Dataset
}

func New() *Store {
	return &Store{
		procedures: map[string]procedures.Procedure{},
		datasets:   map[string]Dataset{},
	}
}

// PutProcedure records proc under id, replacing the previous one.
func (s *Store) PutProcedure(id string, proc procedures.Procedure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procedures[id] = proc
}

// Procedure returns the procedure recorded under id.
func (s *Store) Procedure(id string) (procedures.Procedure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.procedures[id]
	return p, ok
}

// ProcedureIds returns ids of recorded procedures, in order.
func (s *Store) ProcedureIds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.procedures))
	for id := range s.procedures {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PutDataset creates or replaces a dataset.
func (s *Store) PutDataset(id string, ds Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[id] = ds
}

// Dataset returns the dataset, or ErrMissing.
func (s *Store) Dataset(id string) (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: dataset %s", ErrMissing, id)
	}
	return ds, nil
}

// DeleteDataset deletes the dataset, or returns ErrMissing.
func (s *Store) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("%w: dataset %s", ErrMissing, id)
	}
	delete(s.datasets, id)
	return nil
}

// Load reads a CSV file imported by it.
//
// The column named by it.Named becomes the row names, in the first column "_rowName".
// When the file is not readable, the dataset is empty.
func Load(it procedures.ImportText) (Dataset, error) {
	u, err := url.Parse(it.DataFileURL)
	if err != nil {
		return Dataset{}, err
	}
	if u.Scheme != "file" {
		return Dataset{}, fmt.Errorf("unsupported url: %s", it.DataFileURL)
	}

	ds := Dataset{Columns: []string{datasets.RowNameColumn}, Rows: [][]any{}}
	f, err := os.Open(u.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ds, nil
		}
		return Dataset{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if it.Delimiter != "" {
		r.Comma = []rune(it.Delimiter)[0]
	}
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Dataset{}, err
	}
	if len(records) == 0 {
		return ds, nil
	}

	header := records[0]
	index := -1
	if it.Named != "" {
		for i, h := range header {
			if it.Named == fmt.Sprintf("cast(%s as string)", h) {
				index = i
			}
		}
	}
	for i, h := range header {
		if i != index {
			ds.Columns = append(ds.Columns, h)
		}
	}
	for nth, rec := range records[1:] {
		if len(rec) != len(header) {
			if it.IgnoreBadLines != nil && *it.IgnoreBadLines {
				continue
			}
			return Dataset{}, fmt.Errorf("line %d has %d fields", nth+2, len(rec))
		}
		row := make([]any, 0, len(ds.Columns))
		if 0 <= index {
			row = append(row, rec[index])
		} else {
			row = append(row, fmt.Sprint(nth+1))
		}
		for i, v := range rec {
			if i != index {
				row = append(row, v)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
