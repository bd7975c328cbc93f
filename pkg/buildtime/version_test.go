package buildtime_test

import (
	"strings"
	"testing"

	"github.com/opst/mldbkit/pkg/buildtime"
)

func TestVersionString(t *testing.T) {
	v := buildtime.VersionString()
	if buildtime.VERSION() == "" || !strings.HasPrefix(v, buildtime.VERSION()) {
		t.Errorf("unexpected version string: %q", v)
	}
	if strings.ContainsAny(buildtime.VERSION(), "\n ") {
		t.Errorf("version is not trimmed: %q", buildtime.VERSION())
	}
}
