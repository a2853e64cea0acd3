package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	file, err := NewFile(filepath.Join(t.TempDir(), "defs"))
	require.NoError(t, err)

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "form.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		DriverMemory: NewMemory(),
		DriverFile:   file,
		DriverSQLite: db,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set(ctx, "k", `{"fields":[]}`))
			got, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"fields":[]}`, got)

			require.NoError(t, s.Set(ctx, "k", "second"))
			got, _, err = s.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "second", got)

			require.NoError(t, s.Remove(ctx, "k"))
			_, ok, err = s.Get(ctx, "k")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Remove(ctx, "k"), "removing an absent key is not an error")

			require.ErrorIs(t, s.Set(ctx, " ", "x"), ErrEmptyKey)
			_, _, err = s.Get(ctx, "")
			require.ErrorIs(t, err, ErrEmptyKey)
		})
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			def := testsupport.MustParseDefinition(t, `{"fields":[
				{"id":"f1","type":"text","label":"Name","validators":[{"type":"required"},{"type":"minLength","value":5}]},
				{"id":"g","type":"group","label":"Group","children":[
					{"id":"f2","type":"number","label":"Age","validators":[]}
				]}
			]}`)

			require.NoError(t, Save(ctx, s, DefaultKey, def))
			loaded, err := Load(ctx, s, DefaultKey)
			require.NoError(t, err)

			want, _ := def.ToJSON()
			got, _ := loaded.ToJSON()
			require.JSONEq(t, string(want), string(got))
		})
	}
}

func TestLoad_AbsentAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	def, err := Load(ctx, s, DefaultKey)
	require.NoError(t, err)
	require.Equal(t, 0, def.Len())

	require.NoError(t, s.Set(ctx, DefaultKey, "{not json"))
	def, err = Load(ctx, s, DefaultKey)
	require.ErrorIs(t, err, model.ErrInvalidDefinition)
	require.NotNil(t, def)
	require.Equal(t, 0, def.Len())
}

func TestFile_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "a/b", "x"))
	require.Equal(t, filepath.Join(dir, "a%2Fb.json"), s.Path("a/b"))

	data, err := os.ReadFile(s.Path("a/b"))
	require.NoError(t, err)
	require.Equal(t, "x", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSQLite_KeysAndClose(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "b", "2"))
	require.NoError(t, s.Set(ctx, "a", "1"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Close())
	_, _, err = s.Get(ctx, "a")
	require.Error(t, err)
}

func TestMemory_Closed(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Close())
	require.True(t, errors.Is(s.Set(context.Background(), "k", "v"), ErrClosed))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: "memory"})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Path: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &File{}, s)

	s, err = Open(ctx, Config{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Driver: "redis"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}
