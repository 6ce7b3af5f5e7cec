// Command c4 compiles a subset of C to LLVM IR.
package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tinyrange/c4/internal/compiler"
	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/setting"
)

var modeFlags = []setting.Mode{
	setting.ModeTokenize,
	setting.ModeParse,
	setting.ModePrintAST,
	setting.ModeCompile,
	setting.ModeOptimize,
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	errs := diag.NewReporter(os.Stderr)
	if err := newApp(errs).Run(args); err != nil {
		errs.Error("%v", err)
	}
	return errs.Summary()
}

func newApp(errs *diag.Reporter) *cli.App {
	app := cli.NewApp()
	app.Name = "c4"
	app.Usage = "Compile a subset of C to LLVM IR"
	app.ArgsUsage = "<file.c|-> ..."
	app.HideHelpCommand = true

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the final output to `FILE` (\"-\" for standard output)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Read settings from `FILE` (default " + setting.DefaultFile + " when present)",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "Colorize diagnostics: auto, always or never",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log pipeline progress to standard error",
		},
	}
	for _, m := range modeFlags {
		app.Flags = append(app.Flags, &cli.BoolFlag{
			Name:  string(m),
			Usage: "Run in " + string(m) + " mode",
		})
	}

	app.Action = func(ctx *cli.Context) error {
		return compile(ctx, errs)
	}
	return app
}

func loadConfig(path string) (*setting.Config, error) {
	if path != "" {
		return setting.Load(path)
	}
	if _, err := os.Stat(setting.DefaultFile); err == nil {
		return setting.Load(setting.DefaultFile)
	}
	return setting.Default(), nil
}

func compile(ctx *cli.Context, errs *diag.Reporter) error {
	cfg, err := loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}

	var chosen []string
	for _, m := range modeFlags {
		if ctx.Bool(string(m)) {
			chosen = append(chosen, "--"+string(m))
			cfg.Compile.Mode = string(m)
		}
	}
	if len(chosen) > 1 {
		return errors.Errorf("conflicting modes %s", strings.Join(chosen, ", "))
	}
	if ctx.IsSet("color") {
		cfg.Diagnostics.Color = ctx.String("color")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	errs.SetColor(cfg.ColorMode())

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel())
	if ctx.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	files := ctx.Args().Slice()
	if len(files) == 0 {
		return errors.New("no input files")
	}
	opts := compiler.OptionsFrom(cfg)
	opts.Output = ctx.String("output")
	if opts.Output != "" && len(files) > 1 {
		return errors.New("cannot specify -o with multiple files")
	}

	c := compiler.New(opts, errs, logger)
	for _, path := range files {
		if _, err := c.File(path); err != nil {
			errs.Error("%v", err)
		}
	}
	return nil
}
