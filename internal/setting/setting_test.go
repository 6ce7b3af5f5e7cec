package setting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/c4/internal/diag"
)

func TestDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, ModeCompile, c.Mode())
	assert.Equal(t, ".ll", c.Compile.OutputSuffix)
	assert.Equal(t, diag.ColorAuto, c.ColorMode())
	assert.Equal(t, logrus.InfoLevel, c.LogLevel())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[compile]
MODE = optimize
TARGET_TRIPLE = aarch64-unknown-linux-gnu

[diagnostics]
COLOR = never

[log]
LEVEL = debug
`))
	require.NoError(t, err)
	assert.Equal(t, ModeOptimize, c.Mode())
	assert.Equal(t, "aarch64-unknown-linux-gnu", c.Compile.TargetTriple)
	assert.Equal(t, ".ll", c.Compile.OutputSuffix)
	assert.Equal(t, diag.ColorNever, c.ColorMode())
	assert.Equal(t, logrus.DebugLevel, c.LogLevel())
}

func TestParseRejectsUnknownValues(t *testing.T) {
	for _, src := range []string{
		"[compile]\nMODE = assemble\n",
		"[diagnostics]\nCOLOR = sometimes\n",
		"[log]\nLEVEL = loud\n",
	} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("[compile]\nMODE = print-ast\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModePrintAST, c.Mode())

	_, err = Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.ErrorContains(t, err, "missing.ini")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Tokenize")
	require.NoError(t, err)
	assert.Equal(t, ModeTokenize, m)
	_, err = ParseMode("link")
	assert.Error(t, err)
}
