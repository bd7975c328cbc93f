// Package datasets moves datasets between local CSV files and the ML database service.
package datasets

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	DefaultDelimiter  = ";"
	DefaultIndexLabel = "rowName"

	// procedure id of imports
	ImportProcedureId = "import"

	// procedure id of server side exports
	ExportProcedureId = "export"
)

// Dataset is a dataset and its local file.
//
// The file is "<Dir>/<Name>.<Extension()>".
type Dataset struct {
	Name string

	// directory of the file. Empty means the current directory.
	Dir string

	// compression of the file. Empty means plain CSV.
	Compression string
}

// Extension of the file.
//
// "csv" for plain CSV, "gzip" for "gz", otherwise the compression itself.
func (d Dataset) Extension() string {
	switch d.Compression {
	case "":
		return "csv"
	case "gz":
		return "gzip"
	default:
		return d.Compression
	}
}

// FilePath returns the absolute path of the file.
func (d Dataset) FilePath() (string, error) {
	dir := d.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return filepath.Abs(filepath.Join(dir, d.Name+"."+d.Extension()))
}

// ExistsOnDisk reports whether the file exists.
func (d Dataset) ExistsOnDisk() bool {
	p, err := d.FilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Rollback removes the file.
//
// It returns true when the file does not exist anymore.
func (d Dataset) Rollback() bool {
	p, err := d.FilePath()
	if err != nil {
		return false
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false
	}
	_, err = os.Stat(p)
	return errors.Is(err, os.ErrNotExist)
}

// fileURL returns "file://" URL of the path.
func fileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}
