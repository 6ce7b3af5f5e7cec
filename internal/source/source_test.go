package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStdin(t *testing.T) {
	f, err := Read("-", strings.NewReader("int x;"))
	require.NoError(t, err)
	assert.Equal(t, StdinName, f.Name)
	assert.Equal(t, "int x;", string(f.Data))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.c")
	require.NoError(t, os.WriteFile(path, []byte("int y;"), 0o644))

	f, err := Read(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name)
	assert.Equal(t, "int y;", string(f.Data))

	_, err = Read(filepath.Join(t.TempDir(), "missing.c"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.c")
}
