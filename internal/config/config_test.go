package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 0, c.Workers)
	assert.EqualValues(t, 1000, c.StartSize)
	assert.EqualValues(t, 100, c.GrowStep)
	assert.EqualValues(t, 1, c.ShrinkStep)
	assert.False(t, c.Recursive)
	assert.False(t, c.Verbose)
	assert.False(t, c.PadToPowerOfTwo)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_PartialFileKeepsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlaspack.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 4\nrecursive = true\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Workers)
	assert.True(t, c.Recursive)
	assert.EqualValues(t, 1000, c.StartSize, "omitted fields keep their default")
}

func TestLoad_UnknownKeyIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlaspack.toml")
	require.NoError(t, os.WriteFile(path, []byte("totally_unknown = 1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlaspack.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid toml === {{{"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
