package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opst/mldbkit/cmd/mlkit/subcommands/logger"
	"github.com/opst/mldbkit/pkg/configs/profiles"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/rest"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		return task(ctx, logger.ForCommand(cl.Stderr(), cl.Fullname()), commonFlag, cl, newpos)
	}
}

// Task is a body of subcommands talking to the ML database service.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	handle *gateway.Handle,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask builds a flarc.Task which connects to the service of the selected profile
// and then runs task.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			if errors.Is(err, profiles.ErrProfileStoreNotFound) {
				return fmt.Errorf(
					"%w: profile store (%s) is not found. Please try `mlkit init` first",
					err, commonFlag.ProfileStore,
				)
			}
			return fmt.Errorf(
				"%w: failed to load profile store (%s)", err, commonFlag.ProfileStore,
			)
		}
		prof, ok := store[commonFlag.Profile]
		if !ok {
			return fmt.Errorf(
				"profile '%s' not found in the profile store (%s)",
				commonFlag.Profile, commonFlag.ProfileStore,
			)
		}

		client, err := rest.NewClient(prof)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create client. Your profile (%s in %s) can be broken.\n\nRemove it and try `mlkit init` again",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, gateway.NewHandle(client), cl, params)
	})
}

// UsageError marks err as a misuse of the command.
func UsageError(format string, args ...any) error {
	return errors.Join(flarc.ErrUsage, fmt.Errorf(format, args...))
}
