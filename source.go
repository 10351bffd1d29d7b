// Package fixedform recovers the block structure of fixed-form Fortran 77 source.
//
// Parsing runs in three stages. Each physical line is classified as a comment, a
// continuation or an initial line, initial lines getting a statement kind from an
// ordered keyword catalogue. Lines are then grouped into statements
// ([ast.LogicalLine]), and statements are nested into program units and block DO
// and IF constructs. Every stage is written with the combinators of package comb.
package fixedform

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"github.com/soypat/go-fixedform/ast"
)

// Options configure [Parse].
type Options struct {
	// MaxDepth limits the nesting of DO and IF blocks. Zero means [DefaultMaxDepth].
	MaxDepth int
	// Logger receives debug records about the parsing stages. Nil disables logging.
	Logger *slog.Logger
}

// File is a parsed source file.
type File struct {
	Source  string
	Raw     []*ast.RawLine
	Logical []*ast.LogicalLine
	Tree    *ast.OuterBlock
}

// ReadLines reads r into lines, each keeping its line ending. The last line
// lacks one when the input does not end with a newline.
func ReadLines(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		} else if err != nil {
			return nil, err
		}
	}
}

// Parse reads and parses the source named source from r. No partial result is
// returned on failure; errors from the parsing stages are of type [*ParseError].
func Parse(source string, r io.Reader, opts Options) (*File, error) {
	if source == "" {
		return nil, errors.New("no source name")
	}
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(source, lines, opts)
}

// ParseLines parses lines as read by [ReadLines].
func ParseLines(source string, lines []string, opts Options) (*File, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(slog.String("source", source))
	raw, err := ClassifyLines(source, lines)
	if err != nil {
		return nil, err
	}
	log.Debug("classified lines", slog.Int("lines", len(raw)))
	logical, err := AssembleLogicalLines(source, raw)
	if err != nil {
		return nil, err
	}
	log.Debug("assembled statements", slog.Int("statements", len(logical)))
	opts.Logger = log
	tree, err := RecoverBlocks(source, logical, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("recovered blocks", slog.Int("units", len(tree.Parts)))
	return &File{Source: source, Raw: raw, Logical: logical, Tree: tree}, nil
}
