package fixedform

import (
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/comb"
)

// blankLine matches a line holding only white space.
var blankLine = comb.Satisfy(func(l *ast.RawLine) bool {
	return strings.TrimSpace(l.Original) == ""
}, "blank line")

// RemoveBlanks returns the text of raw with every run of blank lines collapsed
// into a single empty line.
func RemoveBlanks(raw []*ast.RawLine) string {
	collapse := comb.Choice(
		comb.Map(comb.AtLeastOnce(blankLine), func(run []*ast.RawLine) string {
			if eol := run[len(run)-1].EOL; eol != "" {
				return eol
			}
			return "\n"
		}),
		comb.Map(comb.Any[*ast.RawLine](), func(l *ast.RawLine) string { return l.Original }),
	)
	return scanText(comb.Many(collapse), raw)
}

// NewComments returns the text of raw with comments marked by C or * in column 1
// rewritten to start with !.
func NewComments(raw []*ast.RawLine) string {
	upgrade := comb.Map(comb.Any[*ast.RawLine](), func(l *ast.RawLine) string {
		if l.Kind == ast.Comment && l.Original != "" && strings.ContainsRune("cC*", rune(l.Original[0])) {
			return "!" + l.Original[1:]
		}
		return l.Original
	})
	return scanText(comb.Many(upgrade), raw)
}

func scanText(p *comb.Parser[*ast.RawLine, []string], raw []*ast.RawLine) string {
	// Repetitions of Any over lines never fail.
	return strings.Join(p.Scan(raw, 0).Value, "")
}
