// Package compiler runs the compilation pipeline over input files: tokenize,
// parse, analyze, generate, optionally optimize, and emit LLVM IR.
package compiler

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/codegen"
	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/ir"
	"github.com/tinyrange/c4/internal/lexer"
	"github.com/tinyrange/c4/internal/llvm"
	"github.com/tinyrange/c4/internal/parser"
	"github.com/tinyrange/c4/internal/printer"
	"github.com/tinyrange/c4/internal/sema"
	"github.com/tinyrange/c4/internal/setting"
	"github.com/tinyrange/c4/internal/source"
)

type Options struct {
	Mode         setting.Mode
	Output       string // overrides the derived name of the final output
	OutputSuffix string
	TargetTriple string

	Stdin  io.Reader
	Stdout io.Writer
	// Create opens an output file; os.Create when nil.
	Create func(path string) (io.WriteCloser, error)
}

// OptionsFrom fills Options from a loaded configuration.
func OptionsFrom(c *setting.Config) Options {
	return Options{
		Mode:         c.Mode(),
		OutputSuffix: c.Compile.OutputSuffix,
		TargetTriple: c.Compile.TargetTriple,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
	}
}

type Compiler struct {
	opts Options
	errs *diag.Reporter
	log  logrus.FieldLogger
}

func New(opts Options, errs *diag.Reporter, log logrus.FieldLogger) *Compiler {
	if opts.Mode == "" {
		opts.Mode = setting.ModeCompile
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = ".ll"
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Create == nil {
		opts.Create = func(path string) (io.WriteCloser, error) { return os.Create(path) }
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Compiler{opts: opts, errs: errs, log: log}
}

// Result is what the pipeline produced for one input. Fields stay nil for
// phases that did not run.
type Result struct {
	Tokens  int
	Unit    *ast.TranslationUnit
	Module  *ir.Module
	Outputs []string
}

// File reads path ("-" for standard input) and runs the pipeline on it.
// Problems in the program go to the reporter; the returned error covers
// I/O failures and internal faults.
func (c *Compiler) File(path string) (*Result, error) {
	f, err := source.Read(path, c.opts.Stdin)
	if err != nil {
		return nil, err
	}
	c.log.WithField("file", f.Name).Debugf("read %s", humanize.Bytes(uint64(len(f.Data))))
	return c.Run(f)
}

// Run compiles one source buffer. A panic inside a phase is turned into an
// error so that the remaining inputs are still processed.
func (c *Compiler) Run(f *source.File) (res *Result, err error) {
	res = &Result{}
	log := c.log.WithField("file", f.Name)
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("internal compiler error in %s: %v", f.Name, r)
		}
	}()

	if c.opts.Mode == setting.ModeTokenize {
		res.Tokens = c.tokenize(f)
		log.Debugf("tokenized %s tokens", humanize.Comma(int64(res.Tokens)))
		return res, nil
	}

	if !c.phase(log, "parse", func() { res.Unit = parser.ParseFile(f, c.errs) }) {
		return res, nil
	}
	if !c.phase(log, "analyze", func() { sema.Analyze(res.Unit, c.errs) }) {
		return res, nil
	}
	switch c.opts.Mode {
	case setting.ModeParse:
		return res, nil
	case setting.ModePrintAST:
		return res, errors.Wrap(printer.Fprint(c.opts.Stdout, res.Unit), "print syntax tree")
	}

	var genErr error
	c.phase(log, "generate", func() { res.Module, genErr = codegen.Generate(res.Unit, f.Name) })
	if genErr != nil {
		return res, genErr
	}
	res.Module.Triple = c.opts.TargetTriple

	stdin := f.Name == source.StdinName
	if c.opts.Mode == setting.ModeCompile {
		return res, c.emit(log, res, res.Module, c.target(f.Name, c.opts.OutputSuffix, stdin))
	}

	if !stdin {
		if err := c.emit(log, res, res.Module, outputPath(f.Name, c.opts.OutputSuffix)); err != nil {
			return res, err
		}
	}
	c.phase(log, "optimize", func() { ir.Optimize(res.Module) })
	if err := ir.Verify(res.Module); err != nil {
		return res, errors.Wrapf(err, "optimizing %s", f.Name)
	}
	return res, c.emit(log, res, res.Module, c.target(f.Name, "_opt"+c.opts.OutputSuffix, stdin))
}

// phase runs fn and reports whether it finished without new errors.
func (c *Compiler) phase(log logrus.FieldLogger, name string, fn func()) bool {
	start := time.Now()
	c.errs.Mark()
	fn()
	ok := !c.errs.HasNewErrors()
	log.WithFields(logrus.Fields{"phase": name, "elapsed": time.Since(start), "ok": ok}).Debug("phase done")
	return ok
}

// tokenize prints every well-formed token and returns how many there were.
func (c *Compiler) tokenize(f *source.File) int {
	lx := lexer.New(f.Name, f.Data, c.errs)
	n := 0
	for t := lx.Next(); t.Type != lexer.EOF; t = lx.Next() {
		if len(t.Errors) > 0 {
			continue
		}
		fmt.Fprintf(c.opts.Stdout, "%s: %s\n", t.Pos, t.Describe())
		n++
	}
	return n
}

// target names the file for the final output of the run. Standard input
// compiles to standard output unless -o says otherwise.
func (c *Compiler) target(input, suffix string, stdin bool) string {
	switch {
	case c.opts.Output != "":
		return c.opts.Output
	case stdin:
		return "-"
	}
	return outputPath(input, suffix)
}

// outputPath cuts the file name of input at its first '.' and appends
// suffix. Dots in directory names are kept.
func outputPath(input, suffix string) string {
	dir, base := filepath.Split(input)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return dir + base + suffix
}

func (c *Compiler) emit(log logrus.FieldLogger, res *Result, m *ir.Module, path string) error {
	var buf bytes.Buffer
	if err := llvm.Write(&buf, m); err != nil {
		return err
	}
	size := buf.Len()
	if path == "-" {
		_, err := buf.WriteTo(c.opts.Stdout)
		return errors.Wrap(err, "write standard output")
	}
	w, err := c.opts.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if _, err := buf.WriteTo(w); err != nil {
		w.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	res.Outputs = append(res.Outputs, path)
	log.Debugf("wrote %s (%s)", path, humanize.Bytes(uint64(size)))
	return nil
}
