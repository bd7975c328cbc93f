package common

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ProfileNameFile is the file telling which profile is used in the directory and its descendants.
const ProfileNameFile = ".mlkitprofile"

type CommonFlags struct {
	Profile      string `flag:"profile" help:"profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to profile store file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags returns default common flags for the directory from.
//
// The profile is the first line of the nearest .mlkitprofile in from or its ancestors.
// If not found, it is the absolute path of from.
//
// The profile store is ~/.mlkit/profile.
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{
		home: "",
	}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	home := detparam.home
	if home == "" {
		_home, err := os.UserHomeDir()
		if err != nil {
			_home = ""
		}
		home = _home
	}

	if _from, err := filepath.Abs(from); err == nil {
		from = _from
	}

	profile := from
	for searchpath := from; ; {
		candidate := path.Join(searchpath, ProfileNameFile)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			content, err := os.ReadFile(candidate)
			if err != nil {
				return CommonFlags{}, err
			}
			if p := strings.Split(string(content), "\n"); 0 < len(p) {
				profile = strings.TrimSpace(p[0])
			}
			break
		}

		next := path.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: path.Join(home, ".mlkit", "profile"),
	}, nil
}
