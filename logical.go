package fixedform

import (
	"slices"
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/comb"
)

type rawParser = *comb.Parser[*ast.RawLine, *ast.RawLine]

func lineOfKind(kind ast.LineKind) rawParser {
	return comb.Satisfy(func(l *ast.RawLine) bool { return l.Kind == kind }, kind.String())
}

var logicalLines = func() *comb.Parser[*ast.RawLine, []*ast.LogicalLine] {
	comment := lineOfKind(ast.Comment)
	continuation := lineOfKind(ast.Continuation)
	initial := lineOfKind(ast.Initial)
	group := comb.Concat(
		comb.Many(comment),
		comb.Singleton(initial),
		comb.Many(comment.Choice(continuation)),
	).Guard(hasOneInitial, "exactly one initial line")
	return comb.ManyTill(comb.Map(group, newLogicalLine), comb.EOF[*ast.RawLine]())
}()

func hasOneInitial(lines []*ast.RawLine) bool {
	n := 0
	for _, l := range lines {
		if l.Kind == ast.Initial {
			n++
		}
	}
	return n == 1
}

func newLogicalLine(lines []*ast.RawLine) *ast.LogicalLine {
	ll := &ast.LogicalLine{Lines: lines}
	var code []string
	for _, l := range lines {
		switch l.Kind {
		case ast.Comment:
			continue
		case ast.Initial:
			ll.Statement = l.Statement
			ll.Label, ll.HasLabel = l.Label, l.HasLabel
		}
		code = append(code, l.Code)
		ll.Tokens = slices.Concat(ll.Tokens, l.Tokens)
		ll.Rest = slices.Concat(ll.Rest, l.Rest)
	}
	ll.Code = strings.Join(code, "\n")
	return ll
}

// AssembleLogicalLines groups classified lines into statements. Every statement
// has exactly one initial line. Comments before it and comments and continuations
// after it belong to it, so a file can neither start with a continuation line nor
// consist of comments only.
func AssembleLogicalLines(source string, raw []*ast.RawLine) ([]*ast.LogicalLine, error) {
	r := logicalLines.Scan(raw, 0)
	if !r.OK() {
		pe := &ParseError{Stage: StageAssemble, Expected: r.Expected, Err: ErrStructure}
		pe.sp, pe.Found = rawPosition(source, raw, r.Start)
		return nil, pe
	}
	return r.Value, nil
}

func rawPosition(source string, raw []*ast.RawLine, pos int) (sourcePos, string) {
	if pos < len(raw) {
		return sourcePos{Source: source, Line: raw[pos].Line}, raw[pos].Kind.String() + " line"
	} else if len(raw) == 0 {
		return sourcePos{Source: source, Line: 1}, "end of input"
	}
	return sourcePos{Source: source, Line: raw[len(raw)-1].Line}, "end of input"
}
