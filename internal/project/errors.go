package project

import (
	"errors"
	"fmt"
)

// ErrRecordExists is returned by Create when .proxima.yml is already present.
var ErrRecordExists = errors.New("proxima record already exists")

// ConfigNotFoundError is returned when no .proxima.yml exists where one was
// expected.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no proxima project found (%s does not exist)", e.Path)
}

// ConfigWriteError is returned when the record could not be persisted. The
// previous record, if any, is left untouched.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error {
	return e.Err
}
