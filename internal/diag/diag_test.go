package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosString(t *testing.T) {
	assert.Equal(t, "a.c:3:7", Pos{Name: "a.c", Line: 3, Col: 7}.String())
	assert.Equal(t, "a.c:3", Pos{Name: "a.c", Line: 3}.String())
	assert.Equal(t, "a.c", Pos{Name: "a.c"}.String())
	assert.Equal(t, "a.c", Pos{Name: "a.c", Col: 4}.String())
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.SetColor(ColorNever)
	assert.False(t, r.HasErrors())
	assert.Equal(t, 0, r.Summary())

	r.Errorf(Pos{Name: "x.c", Line: 1, Col: 2}, "'%s' undeclared", "y")
	r.Mark()
	assert.False(t, r.HasNewErrors())
	r.Error("no input files specified")
	assert.True(t, r.HasNewErrors())

	require.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"'y' undeclared", "no input files specified"}, r.Messages())
	assert.Equal(t, 1, r.Summary())
	assert.Equal(t, "x.c:1:2: error: 'y' undeclared\nerror: no input files specified\n2 error(s)\n", buf.String())
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, m)
	m, err = ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, m)
	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}
