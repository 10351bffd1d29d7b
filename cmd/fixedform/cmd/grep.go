package cmd

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/spf13/cobra"
)

type grepOptions struct {
	ignoreCase   bool
	lineNumbers  bool
	noComments   bool
	after        int
	before       int
	context      int
	filesOnly    bool
	invert       bool
	start, end   int
	noSeparators bool
	kind         string
}

func (a *app) grepCmd() *cobra.Command {
	var opts grepOptions
	cmd := &cobra.Command{
		Use:   "grep pattern file.f ...",
		Short: "Search source lines with comment and statement awareness",
		Long: `grep prints the lines matching a regular expression. Comment lines can be
left out of the search and the search can be restricted to the lines of
statements of one kind, continuation lines included. The status is 1 when no
line matches.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			if opts.ignoreCase {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}
			if opts.context > 0 {
				opts.before, opts.after = opts.context, opts.context
			}
			opts.kind = strings.ReplaceAll(strings.ToLower(opts.kind), " ", "_")
			files := args[1:]
			w := bufio.NewWriter(cmd.OutOrStdout())
			matched := false
			for _, path := range files {
				raw, err := a.classifyFile(path)
				if err != nil {
					return err
				}
				prefix := ""
				if len(files) > 1 {
					prefix = path + ":"
				}
				if opts.search(w, re, raw, path, prefix) {
					matched = true
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !matched {
				return errNoMatch
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	flags.BoolVarP(&opts.lineNumbers, "line-number", "n", true, "show line numbers")
	flags.BoolVarP(&opts.noComments, "no-comments", "c", false, "exclude comment lines from search")
	flags.IntVarP(&opts.after, "after-context", "A", 0, "show num lines after match")
	flags.IntVarP(&opts.before, "before-context", "B", 0, "show num lines before match")
	flags.IntVarP(&opts.context, "context", "C", 0, "show num lines before and after match (overrides -A and -B)")
	flags.BoolVarP(&opts.filesOnly, "files-with-matches", "l", false, "only print filenames with matches")
	flags.BoolVar(&opts.invert, "invert-match", false, "show non-matching lines")
	flags.IntVarP(&opts.start, "start", "s", 0, "start line (inclusive, 1-indexed)")
	flags.IntVarP(&opts.end, "end", "e", 0, "end line (inclusive, 1-indexed)")
	flags.BoolVar(&opts.noSeparators, "no-sep", false, "suppress -- separators between non-contiguous matches")
	flags.StringVarP(&opts.kind, "kind", "k", "", "only search lines of statements of this kind, e.g. do or end_if")
	return cmd
}

// statementKinds returns the statement kind of every line of raw. Continuation
// lines take the kind of their initial line; comments get none.
func statementKinds(raw []*ast.RawLine) []string {
	kinds := make([]string, len(raw))
	current := ""
	for i, l := range raw {
		switch l.Kind {
		case ast.Initial:
			current = l.Statement
			kinds[i] = current
		case ast.Continuation:
			kinds[i] = current
		}
	}
	return kinds
}

// search writes the lines of raw selected by o and reports whether any line
// matched.
func (o *grepOptions) search(w io.Writer, re *regexp.Regexp, raw []*ast.RawLine, path, prefix string) bool {
	kinds := statementKinds(raw)
	var matches []int
	for i, l := range raw {
		if o.start > 0 && l.Line < o.start || o.end > 0 && l.Line > o.end {
			continue
		}
		if o.noComments && l.Kind == ast.Comment {
			continue
		}
		if o.kind != "" && kinds[i] != o.kind {
			continue
		}
		text := strings.TrimRight(l.Original, "\r\n")
		if re.MatchString(text) != o.invert {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return false
	}
	if o.filesOnly {
		fmt.Fprintln(w, path)
		return true
	}

	printed := make(map[int]bool)
	context := make(map[int]bool)
	for _, m := range matches {
		printed[m] = true
		delete(context, m)
		for j := max(m-o.before, 0); j <= min(m+o.after, len(raw)-1); j++ {
			if !printed[j] {
				printed[j] = true
				context[j] = true
			}
		}
	}

	last := -1
	for i, l := range raw {
		if !printed[i] {
			continue
		}
		if last >= 0 && i > last+1 && !o.noSeparators && !o.onlyComments(raw[last+1:i]) {
			fmt.Fprintln(w, "--")
		}
		last = i
		sep := ":"
		if context[i] {
			sep = "-"
		}
		text := strings.TrimRight(l.Original, "\r\n")
		if o.lineNumbers {
			fmt.Fprintf(w, "%s%d%s%s\n", prefix, l.Line, sep, text)
		} else {
			fmt.Fprintf(w, "%s%s\n", prefix, text)
		}
	}
	return true
}

// onlyComments reports whether a gap between printed lines is made only of
// comments skipped by the search.
func (o *grepOptions) onlyComments(gap []*ast.RawLine) bool {
	if !o.noComments {
		return false
	}
	for _, l := range gap {
		if l.Kind != ast.Comment {
			return false
		}
	}
	return true
}
