// Package cmd holds the subcommands of the fixedform command.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	fixedform "github.com/soypat/go-fixedform"
	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/internal/config"
	"github.com/spf13/cobra"
)

// errNoMatch ends grep with a failing status without an error message.
var errNoMatch = errors.New("no match")

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfgFile  string
	verbose  bool
	maxDepth int
	cfg      config.Config
	log      *slog.Logger
	stderr   io.Writer
}

// Execute runs the command line of the process.
func Execute() error {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(os.Args[1:])
	err := root.Execute()
	if err != nil && !errors.Is(err, errNoMatch) {
		printError(os.Stderr, err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}
	root := &cobra.Command{
		Use:   "fixedform",
		Short: "Recover the block structure of fixed-form Fortran 77 source",
		Long: `fixedform classifies the lines of fixed-form Fortran 77 files, groups them
into statements and nests the statements into program units and block DO and
IF constructs.

Settings are read from the file given by --config (TOML, or YAML for .yaml and
.yml files). FIXEDFORM_MAX_DEPTH and FIXEDFORM_INDENT override the file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "configuration file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log the parsing stages")
	flags.IntVar(&a.maxDepth, "max-depth", 0, "nesting limit of DO and IF blocks (default from config)")
	root.AddCommand(a.viewCmds()...)
	root.AddCommand(
		a.textCmd("remove-blanks", "Collapse runs of blank lines", fixedform.RemoveBlanks),
		a.textCmd("new-comments", "Rewrite C and * comments as ! comments", fixedform.NewComments),
		a.analyzeCmd(),
		a.grepCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = a.maxDepth
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	lvl, _ := cfg.Level()
	if a.verbose {
		lvl = slog.LevelDebug
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: lvl}))
	return nil
}

func (a *app) options() fixedform.Options {
	return fixedform.Options{MaxDepth: a.cfg.MaxDepth, Logger: a.log}
}

// parseFile reads and parses the file at path.
func (a *app) parseFile(path string) (*fixedform.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fixedform.Parse(path, f, a.options())
}

// classifyFile classifies the lines of the file at path without grouping
// them into statements.
func (a *app) classifyFile(path string) ([]*ast.RawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := fixedform.ReadLines(f)
	if err != nil {
		return nil, err
	}
	raw, err := fixedform.ClassifyLines(path, lines)
	if err != nil {
		return nil, err
	}
	a.log.Debug("classified lines", slog.String("source", path), slog.Int("lines", len(raw)))
	return raw, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "fixedform: %v\n", err)
}
