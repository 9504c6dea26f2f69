package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

const root = "/work/demo"

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	return NewStore(fsys, root), fsys
}

func writeRecord(t *testing.T, fsys afero.Fs, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(root, FileName), []byte(content), 0o644))
}

func TestReadState_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ReadState()

	var notFound *ConfigNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, filepath.Join(root, FileName), notFound.Path)
}

func TestReadState_DefaultsToUninitialized(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, "name: demo\napp_config: app-config.yml\n")

	state, err := store.ReadState()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Uninitialized, state)
}

func TestReadState_Parses(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, "name: demo\napp_config: app-config.yml\nstate: Generated\n")

	state, err := store.ReadState()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Generated, state)
}

func TestReadState_UnknownState(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, "name: demo\nstate: Deployed\n")

	_, err := store.ReadState()
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	store, _ := newTestStore(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := store.Create(Record{
		Name:      "demo",
		ID:        "6f1c2a4e-0000-4000-8000-000000000000",
		AppConfig: DefaultAppConfig,
		State:     lifecycle.Initialized,
		CreatedAt: created,
	})
	require.NoError(t, err)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "demo", rec.Name)
	assert.Equal(t, DefaultAppConfig, rec.AppConfig)
	assert.Equal(t, lifecycle.Initialized, rec.State)
	assert.True(t, created.Equal(rec.CreatedAt))
}

func TestCreate_RefusesExisting(t *testing.T) {
	store, fsys := newTestStore(t)
	original := "name: keep-me\nstate: Built\n"
	writeRecord(t, fsys, original)

	err := store.Create(Record{Name: "demo", State: lifecycle.Initialized})
	assert.ErrorIs(t, err, ErrRecordExists)

	data, err := afero.ReadFile(fsys, store.Path())
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestWriteState_PreservesOtherFields(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, `# proxima project
name: demo
app_config: app-config.yml
data_vertex_node: ./DataVertex
state: Initialized
`)

	require.NoError(t, store.WriteState(lifecycle.Generated))

	data, err := afero.ReadFile(fsys, store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# proxima project")
	assert.Contains(t, string(data), "data_vertex_node: ./DataVertex")
	assert.Contains(t, string(data), "state: Generated")

	state, err := store.ReadState()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Generated, state)
}

func TestWriteState_AddsMissingField(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, "name: demo\napp_config: app-config.yml\n")

	require.NoError(t, store.WriteState(lifecycle.Built))

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "demo", rec.Name)
	assert.Equal(t, lifecycle.Built, rec.State)
}

func TestWriteState_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.WriteState(lifecycle.Generated)

	var notFound *ConfigNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestWriteState_RejectsNonMapping(t *testing.T) {
	store, fsys := newTestStore(t)
	writeRecord(t, fsys, "- just\n- a list\n")

	err := store.WriteState(lifecycle.Generated)

	var writeErr *ConfigWriteError
	assert.ErrorAs(t, err, &writeErr)
}

// renameFailFs fails the final rename of an atomic write.
type renameFailFs struct{ afero.Fs }

func (renameFailFs) Rename(string, string) error {
	return errors.New("device or resource busy")
}

// writeFailFs hands out files whose writes fail once created.
type writeFailFs struct{ afero.Fs }

func (f writeFailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil || flag&os.O_CREATE == 0 {
		return file, err
	}
	return writeFailFile{file}, nil
}

type writeFailFile struct{ afero.File }

func (writeFailFile) Write([]byte) (int, error) {
	return 0, errors.New("no space left on device")
}

func TestWriteState_FailureLeavesRecordUnchanged(t *testing.T) {
	original := "name: demo\napp_config: app-config.yml\nstate: Generated\n"

	tests := []struct {
		name string
		wrap func(afero.Fs) afero.Fs
	}{
		{"rename fails", func(fs afero.Fs) afero.Fs { return renameFailFs{fs} }},
		{"write fails", func(fs afero.Fs) afero.Fs { return writeFailFs{fs} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := afero.NewMemMapFs()
			require.NoError(t, base.MkdirAll(root, 0o755))
			require.NoError(t, afero.WriteFile(base, filepath.Join(root, FileName), []byte(original), 0o644))

			store := NewStore(tt.wrap(base), root)
			err := store.WriteState(lifecycle.Built)

			var writeErr *ConfigWriteError
			require.ErrorAs(t, err, &writeErr)

			data, err := afero.ReadFile(base, filepath.Join(root, FileName))
			require.NoError(t, err)
			assert.Equal(t, original, string(data))

			entries, err := afero.ReadDir(base, root)
			require.NoError(t, err)
			require.Len(t, entries, 1, "temp file left behind")
			assert.Equal(t, FileName, entries[0].Name())
		})
	}
}

func TestRecord_AppConfigPath(t *testing.T) {
	assert.Equal(t, DefaultAppConfig, (&Record{}).AppConfigPath())
	assert.Equal(t, "config/app.yml", (&Record{AppConfig: "config/app.yml"}).AppConfigPath())
}
