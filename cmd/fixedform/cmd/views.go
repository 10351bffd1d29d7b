package cmd

import (
	"bufio"

	fixedform "github.com/soypat/go-fixedform"
	"github.com/soypat/go-fixedform/ast"
	"github.com/spf13/cobra"
)

// printer writes the tree of a parsed file.
type printer func(w *bufio.Writer, f *fixedform.File) error

func (a *app) viewCmds() []*cobra.Command {
	var (
		width int
		color bool
	)
	indent := a.viewCmd("indent", "Indent statements by block nesting", func(w *bufio.Writer, f *fixedform.File) error {
		return ast.Indent(w, f.Tree, width)
	})
	indent.Flags().IntVarP(&width, "width", "w", 0, "spaces per nesting level (default from config)")
	indent.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("width") {
			width = a.cfg.IndentWidth
		}
	}

	details := a.viewCmd("details", "Print the statement kind and nesting of every line", func(w *bufio.Writer, f *fixedform.File) error {
		var style func(string) string
		if color {
			style = newTagStyles().render
		}
		return ast.Details(w, f.Tree, style)
	})
	details.Flags().BoolVar(&color, "color", false, "color statement kinds by class (default from config)")
	details.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("color") {
			color = a.cfg.Color
		}
	}

	return []*cobra.Command{
		a.viewCmd("plain", "Print the source as read", func(w *bufio.Writer, f *fixedform.File) error {
			return ast.Plain(w, f.Tree)
		}),
		indent,
		details,
		a.viewCmd("reconstruct", "Print the source rebuilt from its tokens", func(w *bufio.Writer, f *fixedform.File) error {
			return ast.Reconstruct(w, f.Tree)
		}),
	}
}

// viewCmd parses every file argument and prints its tree with show.
func (a *app) viewCmd(use, short string, show printer) *cobra.Command {
	return &cobra.Command{
		Use:   use + " file.f ...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, path := range args {
				f, err := a.parseFile(path)
				if err != nil {
					return err
				}
				if err := show(w, f); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}

// textCmd rewrites the lines of every file argument with rewrite. The lines
// are classified but not grouped, so files with unbalanced blocks are accepted.
func (a *app) textCmd(use, short string, rewrite func([]*ast.RawLine) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " file.f ...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, path := range args {
				raw, err := a.classifyFile(path)
				if err != nil {
					return err
				}
				w.WriteString(rewrite(raw))
			}
			return w.Flush()
		},
	}
}
