package common_test

import (
	"path/filepath"
	"testing"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/utils/try"
)

func TestDefaultCommonFlags(t *testing.T) {
	expectedStore := try.To(filepath.Abs("./testdata/home/.mlkit/profile")).OrFatal(t)

	t.Run("it returns default value from given directory", func(t *testing.T) {
		cf := try.To(common.Flags(
			"./testdata/current",
			common.WithHome("./testdata/home"),
		)).OrFatal(t)

		if try.To(filepath.Abs(cf.ProfileStore)).OrFatal(t) != expectedStore {
			t.Errorf("wrong profile store: %s", cf.ProfileStore)
		}
		if cf.Profile != "test" {
			t.Errorf("wrong profile: %s", cf.Profile)
		}
	})

	t.Run("it returns default value from ancestors of given directory", func(t *testing.T) {
		cf := try.To(common.Flags(
			"./testdata/current/children/folder",
			common.WithHome("./testdata/home"),
		)).OrFatal(t)

		if try.To(filepath.Abs(cf.ProfileStore)).OrFatal(t) != expectedStore {
			t.Errorf("wrong profile store: %s", cf.ProfileStore)
		}
		if cf.Profile != "test" {
			t.Errorf("wrong profile: %s", cf.Profile)
		}
	})

	t.Run("it uses the directory as profile name when no profile name file is found", func(t *testing.T) {
		cf := try.To(common.Flags(
			"./testdata/orphan",
			common.WithHome("./testdata/home"),
		)).OrFatal(t)

		if cf.Profile != try.To(filepath.Abs("./testdata/orphan")).OrFatal(t) {
			t.Errorf("wrong profile: %s", cf.Profile)
		}
	})
}
