package cmd

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/soypat/go-fixedform/symbol"
	"github.com/spf13/cobra"
)

func (a *app) analyzeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze file.f ...",
		Short: "Report units, labels, implicit rules and unaccounted names",
		Long: `analyze reports for every program unit its formal parameters, statement
labels, IMPLICIT rules, declared and called names, and the names used without
being declared, with the intrinsic functions they may misspell.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Format
			}
			var write func(r *symbol.Report, w *bufio.Writer) error
			switch format {
			case "yaml":
				write = func(r *symbol.Report, w *bufio.Writer) error { return r.WriteYAML(w) }
			case "text":
				write = func(r *symbol.Report, w *bufio.Writer) error { return r.WriteText(w) }
			default:
				return fmt.Errorf("unknown report format %q", format)
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			for i, path := range args {
				f, err := a.parseFile(path)
				if err != nil {
					return err
				}
				report, err := symbol.Analyze(f.Tree)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				a.log.Debug("analyzed", slog.String("source", path), slog.Int("units", len(report.Units)))
				if len(args) > 1 {
					if i > 0 {
						w.WriteByte('\n')
					}
					fmt.Fprintf(w, "# %s\n", path)
				}
				if err := write(report, w); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "report format, yaml or text (default from config)")
	return cmd
}
