// Package profiles manages connection profiles of ML database services.
//
// A profile store is a YAML file mapping profile names to profiles:
//
//	local:
//	    apiRoot: "http://localhost:8080"
//	staging:
//	    apiRoot: "https://mldb.example.com"
//	    cert:
//	        ca: BASE64_ENCODED_PEM
package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/opst/mldbkit/pkg/configs/open"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotCreateConfig = errors.New("cannot create profile store")
var ErrCannotUpdateConfig = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("profile is invalid")

// ProfileStore maps profile names to Profiles.
type ProfileStore map[string]*Profile

type Cert struct {
	// base64 encoded PEM of CA certificate
	CA string `yaml:"ca,omitempty"`
}

// Profile tells where the ML database service is.
type Profile struct {
	// root URL of the API, without "/v1".
	ApiRoot string `yaml:"apiRoot"`

	Cert Cert `yaml:"cert,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

// Verify Profile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if p == nil {
		return fmt.Errorf("%w: profile is empty", ErrProfileInvalid)
	}
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	return nil
}

// LoadProfile loads a single profile from a YAML file.
func LoadProfile(filepath string) (*Profile, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	p := new(Profile)
	if err := yaml.Unmarshal(buf, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := ProfileStore{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Save profile store to file.
//
// The file is readable only by the current user.
// Previous content is kept in "<path>.backup" until the new content is written.
func (ps ProfileStore) Save(path string) error {
	saving := false

	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	bkpath := path + ".backup"
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	if err == nil {
		// existing file may have loose permission.
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			f.Close()
			return err
		}
	} else if os.IsPermission(err) {
		return fmt.Errorf(
			"%w, because no permission to write file at %s",
			ErrCannotUpdateConfig, path,
		)
	} else if os.IsNotExist(err) {
		f_, err_ := open.NewSafeFile(path)
		if err_ != nil {
			return fmt.Errorf(
				"%w: cannot create a file at %s: %w",
				ErrCannotCreateConfig, path, err_,
			)
		}
		f = f_
	} else {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}

	saving = false
	return nil
}
