// Package project persists the lifecycle record (.proxima.yml) of a Proxima
// project. All reads and writes of the record go through Store.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

// Store reads and writes the lifecycle record of a single project.
type Store struct {
	fs   afero.Fs
	root string
	path string
}

// NewStore returns a store for the project rooted at root.
func NewStore(fsys afero.Fs, root string) *Store {
	return &Store{
		fs:   fsys,
		root: root,
		path: filepath.Join(root, FileName),
	}
}

// Root returns the project root directory.
func (s *Store) Root() string { return s.root }

// Path returns the location of .proxima.yml.
func (s *Store) Path() string { return s.path }

// Fs returns the filesystem the store operates on.
func (s *Store) Fs() afero.Fs { return s.fs }

// Exists reports whether the record is present.
func (s *Store) Exists() (bool, error) {
	return afero.Exists(s.fs, s.path)
}

// Load reads and parses the full record.
func (s *Store) Load() (*Record, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigNotFoundError{Path: s.path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return &rec, nil
}

// ReadState returns the recorded lifecycle state. A record without a state
// field is Uninitialized.
func (s *Store) ReadState() (lifecycle.State, error) {
	rec, err := s.Load()
	if err != nil {
		return lifecycle.Uninitialized, err
	}
	return rec.State, nil
}

// WriteState replaces the state field of the existing record. Every other
// key, including ones this package does not know about, is kept as is.
func (s *Store) WriteState(state lifecycle.State) error {
	if !state.Valid() {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("invalid state %d", int(state))}
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigNotFoundError{Path: s.path}
		}
		return &ConfigWriteError{Path: s.path, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("parse existing record: %w", err)}
	}
	if err := setField(&doc, "state", state.String()); err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}

	out, err := encode(&doc)
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}
	return s.writeAtomic(out)
}

// Create writes a new record. It refuses to replace an existing one.
func (s *Store) Create(rec Record) error {
	exists, err := s.Exists()
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}
	if exists {
		return ErrRecordExists
	}

	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}

	out, err := encode(&rec)
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}
	return s.writeAtomic(out)
}

// writeAtomic writes data next to the record and renames it into place so
// readers never observe a partially written file.
func (s *Store) writeAtomic(data []byte) (err error) {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), FileName+".*.tmp")
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err = tmp.Close(); err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err = s.fs.Chmod(tmpName, 0o644); err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}
	if err = s.fs.Rename(tmpName, s.path); err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("replace record: %w", err)}
	}
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setField sets a top-level scalar in a YAML document, appending the key if
// it is missing.
func setField(doc *yaml.Node, key, value string) error {
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if doc.Kind != yaml.DocumentNode {
		return fmt.Errorf("unexpected yaml node kind %d", doc.Kind)
	}
	if len(doc.Content) == 0 {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("record root is not a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			v := root.Content[i+1]
			v.Kind = yaml.ScalarNode
			v.Tag = "!!str"
			v.Style = 0
			v.Value = value
			v.Content = nil
			return nil
		}
	}

	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
	return nil
}
