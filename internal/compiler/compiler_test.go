package compiler

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/setting"
	"github.com/tinyrange/c4/internal/source"
)

type testCase struct {
	Name     string         `yaml:"name"`
	Mode     string         `yaml:"mode"`
	Source   string         `yaml:"source"`
	Errors   []string       `yaml:"errors"`
	Contains []string       `yaml:"contains"`
	Outputs  []string       `yaml:"outputs"`
	Blocks   map[string]int `yaml:"blocks"`
	Tokens   int            `yaml:"tokens"`
}

type memFile struct {
	bytes.Buffer
	name  string
	files map[string]string
}

func (f *memFile) Close() error {
	f.files[f.name] = f.String()
	return nil
}

// memCompiler returns a compiler whose outputs land in files.
func memCompiler(t *testing.T, mode setting.Mode, stdout io.Writer, files map[string]string) (*Compiler, *diag.Reporter) {
	t.Helper()
	r := diag.NewReporter(nil)
	opts := Options{
		Mode:         mode,
		TargetTriple: "x86_64-unknown-linux-gnu",
		Stdout:       stdout,
		Create: func(path string) (io.WriteCloser, error) {
			return &memFile{name: path, files: files}, nil
		},
	}
	return New(opts, r, nil), r
}

func loadCases(t *testing.T) []testCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "compile.yaml"))
	require.NoError(t, err)
	var cases []testCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestCompile(t *testing.T) {
	for _, tc := range loadCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			mode, err := setting.ParseMode(tc.Mode)
			require.NoError(t, err)

			var stdout bytes.Buffer
			files := map[string]string{}
			c, r := memCompiler(t, mode, &stdout, files)
			res, err := c.Run(source.FromString("case.c", tc.Source))
			require.NoError(t, err)

			if len(tc.Errors) == 0 {
				assert.Empty(t, r.Messages())
			} else {
				assert.Equal(t, tc.Errors, r.Messages())
				assert.Nil(t, res.Module)
				assert.Empty(t, files)
				if mode != setting.ModeTokenize {
					assert.Empty(t, stdout.String())
				}
			}

			all := stdout.String()
			names := make([]string, 0, len(files))
			for name, text := range files {
				names = append(names, name)
				all += text
			}
			sort.Strings(names)
			for _, want := range tc.Contains {
				assert.Contains(t, all, want)
			}
			if tc.Outputs != nil {
				assert.Equal(t, tc.Outputs, names)
				assert.Equal(t, tc.Outputs, res.Outputs)
			}
			if tc.Tokens > 0 {
				assert.Equal(t, tc.Tokens, res.Tokens)
				assert.Equal(t, tc.Tokens, strings.Count(stdout.String(), "\n"))
			}
			for fn, n := range tc.Blocks {
				require.NotNil(t, res.Module)
				f := res.Module.Func(fn)
				require.NotNil(t, f, fn)
				assert.Len(t, f.Blocks, n, fn)
			}
		})
	}
}

func TestStdinCompilesToStdout(t *testing.T) {
	var stdout bytes.Buffer
	files := map[string]string{}
	c, r := memCompiler(t, setting.ModeOptimize, &stdout, files)
	res, err := c.Run(&source.File{Name: source.StdinName, Data: []byte("int main(void) { return 1 + 2; }")})
	require.NoError(t, err)
	assert.Empty(t, r.Messages())
	assert.Empty(t, files)
	assert.Empty(t, res.Outputs)
	assert.Contains(t, stdout.String(), "ret i32 3")
}

func TestExplicitOutput(t *testing.T) {
	files := map[string]string{}
	c, _ := memCompiler(t, setting.ModeCompile, io.Discard, files)
	c.opts.Output = "out/prog.ll"
	_, err := c.Run(source.FromString("dir/prog.c", "int main(void) { return 0; }"))
	require.NoError(t, err)
	assert.Contains(t, files, "out/prog.ll")
}

func TestErrorsAccumulateAcrossFiles(t *testing.T) {
	files := map[string]string{}
	c, r := memCompiler(t, setting.ModeCompile, io.Discard, files)
	_, err := c.Run(source.FromString("a.c", "int f(void) { return x; }"))
	require.NoError(t, err)
	_, err = c.Run(source.FromString("b.c", "int main(void) { return 0; }"))
	require.NoError(t, err)

	assert.Equal(t, []string{"'x' undeclared"}, r.Messages())
	assert.Contains(t, files, "b.ll")
	assert.NotContains(t, files, "a.ll")
	assert.Equal(t, 1, r.Summary())
}

func TestFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.c")
	require.NoError(t, os.WriteFile(path, []byte("int main(void) { return 0; }"), 0o644))

	c := New(Options{Mode: setting.ModeCompile, Stdout: io.Discard}, diag.NewReporter(nil), nil)
	res, err := c.File(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "p.ll")}, res.Outputs)
	out, err := os.ReadFile(filepath.Join(dir, "p.ll"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "define i32 @main()")

	_, err = c.File(filepath.Join(dir, "missing.c"))
	assert.ErrorContains(t, err, "missing.c")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "a/b.ll", outputPath("a/b.c", ".ll"))
	assert.Equal(t, "noext_opt.ll", outputPath("noext", "_opt.ll"))
	assert.Equal(t, "a.ll", outputPath("a.b.c", ".ll"))
	assert.Equal(t, "v1.2/main_opt.ll", outputPath("v1.2/main.test.c", "_opt.ll"))
}
