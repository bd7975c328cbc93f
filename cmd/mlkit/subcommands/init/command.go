package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/common"
	"github.com/opst/mldbkit/pkg/configs/profiles"
	"github.com/youta-t/flarc"
)

const ARG_PROFILE_FILE = "PROFILE_FILE"

type Option struct {
	dir string
}

// WithDirectory sets the directory where the profile name file is written.
func WithDirectory(dir string) func(*Option) *Option {
	return func(o *Option) *Option {
		o.dir = dir
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{dir: "."}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Initialize this directory to use an ML database service.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROFILE_FILE, Required: true,
				Help: "filepath to profile file, which tells where the service is.",
			},
		},
		common.NewTaskWithCommonFlag(Task(option.dir)),
		flarc.WithDescription(`
Register a new profile into your profile store.

A profile is a YAML file like:

    apiRoot: https://mldb.example.com/
    cert:
      ca: <base64 encoded PEM of CA certificate, optional>

The name of the profile is given by "--profile" ( default: current filepath ).
The name is also written in `+"`"+common.ProfileNameFile+"`"+`, so commands run in
this directory (or its descendants) use the profile.
`),
	)
}

func Task(dir string) common.TaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_PROFILE_FILE][0]

		store, err := profiles.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, profiles.ErrProfileStoreNotFound) {
			store = profiles.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf("failed to load profile store (%s): %w", cf.ProfileStore, err)
		}

		newProf, err := profiles.LoadProfile(profFile)
		if err != nil {
			return fmt.Errorf("failed to read profile file (%s): %w", profFile, err)
		}
		if err := newProf.Verify(); err != nil {
			return fmt.Errorf("%s: %w", profFile, err)
		}

		store[cf.Profile] = newProf
		if err := store.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", cf.ProfileStore, err)
		}
		logger.Printf("profile %s is saved to %s", cf.Profile, cf.ProfileStore)

		nameFile := filepath.Join(dir, common.ProfileNameFile)
		if err := os.WriteFile(nameFile, []byte(cf.Profile), os.FileMode(0600)); err != nil {
			return fmt.Errorf("failed to write %s: %w", nameFile, err)
		}
		return nil
	}
}
