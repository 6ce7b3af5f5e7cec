// Package setting loads compiler configuration from an optional INI file.
package setting

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/tinyrange/c4/internal/diag"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "c4.ini"

// Mode selects how far the pipeline runs for each input.
type Mode string

const (
	ModeTokenize Mode = "tokenize"
	ModeParse    Mode = "parse"
	ModePrintAST Mode = "print-ast"
	ModeCompile  Mode = "compile"
	ModeOptimize Mode = "optimize"
)

var modes = []Mode{ModeTokenize, ModeParse, ModePrintAST, ModeCompile, ModeOptimize}

func ParseMode(s string) (Mode, error) {
	for _, m := range modes {
		if string(m) == strings.ToLower(s) {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown mode %q", s)
}

// Compile is the [compile] section.
type Compile struct {
	Mode         string `ini:"MODE"`
	OutputSuffix string `ini:"OUTPUT_SUFFIX"`
	TargetTriple string `ini:"TARGET_TRIPLE"`
}

// Diagnostics is the [diagnostics] section.
type Diagnostics struct {
	Color string `ini:"COLOR"`
}

// Log is the [log] section.
type Log struct {
	Level string `ini:"LEVEL"`
}

type Config struct {
	Compile     Compile
	Diagnostics Diagnostics
	Log         Log
}

func Default() *Config {
	return &Config{
		Compile: Compile{
			Mode:         string(ModeCompile),
			OutputSuffix: ".ll",
			TargetTriple: "x86_64-unknown-linux-gnu",
		},
		Diagnostics: Diagnostics{Color: string(diag.ColorAuto)},
		Log:         Log{Level: "info"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	c, err := load(path)
	return c, errors.Wrapf(err, "load %s", path)
}

// Parse reads INI text over the defaults.
func Parse(data []byte) (*Config, error) {
	return load(data)
}

func load(src any) (*Config, error) {
	c := Default()
	f, err := ini.Load(src)
	if err != nil {
		return nil, err
	}
	sections := map[string]any{
		"compile":     &c.Compile,
		"diagnostics": &c.Diagnostics,
		"log":         &c.Log,
	}
	for name, dst := range sections {
		if err := f.Section(name).MapTo(dst); err != nil {
			return nil, errors.Wrapf(err, "map [%s]", name)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if _, err := ParseMode(c.Compile.Mode); err != nil {
		return errors.Wrap(err, "[compile] MODE")
	}
	if _, err := diag.ParseColorMode(c.Diagnostics.Color); err != nil {
		return errors.Wrap(err, "[diagnostics] COLOR")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "[log] LEVEL")
	}
	if c.Compile.OutputSuffix == "" {
		return errors.New("[compile] OUTPUT_SUFFIX must not be empty")
	}
	return nil
}

func (c *Config) Mode() Mode {
	m, _ := ParseMode(c.Compile.Mode)
	return m
}

func (c *Config) ColorMode() diag.ColorMode {
	m, _ := diag.ParseColorMode(c.Diagnostics.Color)
	return m
}

func (c *Config) LogLevel() logrus.Level {
	l, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
