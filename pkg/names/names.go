// Package names generates identifiers of datasets and procedures.
package names

import (
	"strings"

	"github.com/google/uuid"
)

// Generate returns a new identifier.
//
// It is "d" followed by 32 hex digits of a random UUID, so it never starts with a digit.
func Generate() string {
	return "d" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
