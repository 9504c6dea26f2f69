package project

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// FindRoot walks up from start looking for a directory that holds
// .proxima.yml. When none is found, start itself is returned so init can
// create a project there.
func FindRoot(fsys afero.Fs, start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		ok, err := afero.Exists(fsys, filepath.Join(dir, FileName))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
