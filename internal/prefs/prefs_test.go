package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "nested", "prefs.yaml"))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			var got sample
			ok, err := s.Get(KeyDrawOptions, &got)
			require.NoError(t, err)
			assert.False(t, ok)

			want := sample{Color: "1, 2, 3", Width: 4}
			require.NoError(t, s.Set(KeyDrawOptions, want))
			require.NoError(t, s.Set(KeyPointerMagnet, 10))

			ok, err = s.Get(KeyDrawOptions, &got)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want, got)

			var magnet float64
			ok, err = s.Get(KeyPointerMagnet, &magnet)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 10.0, magnet)

			require.NoError(t, s.Remove(KeyDrawOptions))
			ok, err = s.Get(KeyDrawOptions, &got)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStoreSharesTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, NewFileStore(path).Set(KeyDrawMode, "ellipse"))

	var mode string
	ok, err := NewFileStore(path).Get(KeyDrawMode, &mode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ellipse", mode)
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o644))

	var mode string
	_, err := NewFileStore(path).Get(KeyDrawMode, &mode)
	assert.Error(t, err)
}
