package fixedform

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/comb"
	"github.com/soypat/go-fixedform/token"
)

// DefaultMaxDepth is the nesting limit of DO and IF blocks used when
// [Options.MaxDepth] is zero.
const DefaultMaxDepth = 256

type (
	lineParser  = *comb.Parser[*ast.LogicalLine, *ast.LogicalLine]
	blockParser = *comb.Parser[*ast.LogicalLine, ast.Block]
	partsParser = *comb.Parser[*ast.LogicalLine, []ast.Block]
)

// statement matches a logical line of one of the given kinds.
func statement(kinds ...string) lineParser {
	return comb.Satisfy(func(l *ast.LogicalLine) bool {
		return slices.Contains(kinds, l.Statement)
	}, describeKinds(kinds))
}

func describeKinds(kinds []string) string {
	switch len(kinds) {
	case 0:
		return "nothing"
	case 1:
		return kinds[0]
	case 2:
		return kinds[0] + " or " + kinds[1]
	}
	return "one of " + strings.Join(kinds[:len(kinds)-1], ", ") + " or " + kinds[len(kinds)-1]
}

func asBlock(p lineParser) blockParser {
	return comb.Map(p, func(l *ast.LogicalLine) ast.Block { return l })
}

func part(p lineParser) partsParser {
	return comb.Singleton(asBlock(p))
}

var (
	nonBlockStatement = comb.Satisfy(func(l *ast.LogicalLine) bool {
		c, ok := ClassOf(l.Statement)
		return !ok || c.IsNonBlock()
	}, "statement")

	// Any statement that neither closes a block nor belongs to the program unit
	// level. Old style DO and IF statements end up here.
	otherStatement = comb.Satisfy(func(l *ast.LogicalLine) bool {
		switch l.Statement {
		case KindEndDo, KindEndIf, KindElse, KindElseIf:
			return false
		}
		c, _ := ClassOf(l.Statement)
		return c != TopLevel
	}, "statement")

	labelAfterDo = comb.Right(comb.Liberal(comb.ExactFold("do")), comb.Liberal(comb.Text(comb.Between(comb.Digit, 1, labelWidth))))
)

// isBlockDo reports whether a DO statement is closed by END DO, that is, it
// names no terminating label as in DO 10 I = 1, 5.
func isBlockDo(l *ast.LogicalLine) bool {
	return !comb.Matches(labelAfterDo, []rune(l.Code), 0)
}

// isBlockIf reports whether an IF statement opens a block: its last significant
// token is THEN.
func isBlockIf(l *ast.LogicalLine) bool {
	toks := token.Significant(l.Tokens)
	return len(toks) > 0 && toks[len(toks)-1].Is("then")
}

// recoverer builds the block grammar for one call. Inner statement parsers are
// built lazily per nesting depth so that the depth limit is part of the grammar.
type recoverer struct {
	maxDepth int
	log      *slog.Logger
	items    []blockParser
}

func newRecoverer(maxDepth int, logger *slog.Logger) *recoverer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &recoverer{maxDepth: maxDepth, log: logger.With(slog.String("component", "recoverer"))}
}

func (r *recoverer) outer(kind string, depth int) func([]ast.Block) ast.Block {
	return func(parts []ast.Block) ast.Block {
		b := &ast.OuterBlock{Kind: kind, Parts: parts}
		r.log.Debug("recovered block", slog.String("kind", kind), slog.Int("line", b.Pos()), slog.Int("depth", depth))
		return b
	}
}

func inner(children []ast.Block) ast.Block {
	return &ast.InnerBlock{Children: children}
}

// item matches one statement or block inside a block nested depth levels deep.
func (r *recoverer) item(depth int) blockParser {
	for len(r.items) <= depth {
		r.items = append(r.items, nil)
	}
	if r.items[depth] == nil {
		r.items[depth] = comb.ChoiceNoBacktrack(
			asBlock(nonBlockStatement),
			r.doBlock(depth),
			r.ifBlock(depth),
			asBlock(otherStatement),
		)
	}
	return r.items[depth]
}

// nested defers to the items one level deeper.
func (r *recoverer) nested(depth int) blockParser {
	return comb.Lazy("statement", func() blockParser { return r.item(depth + 1) })
}

// tooDeep fails fatally at a block opening statement found past the depth limit.
func (r *recoverer) tooDeep(begin lineParser) blockParser {
	abort := comb.Abort[*ast.LogicalLine, ast.Block](ErrMaxDepth)
	return comb.FromFunc(begin.Expected(), func(in []*ast.LogicalLine, pos int) comb.Result[ast.Block] {
		if !comb.Matches(begin, in, pos) {
			return comb.Failure[ast.Block](pos, begin.Expected())
		}
		return abort.Scan(in, pos)
	})
}

// doBlock matches DO, its body and END DO.
func (r *recoverer) doBlock(depth int) blockParser {
	begin := statement(KindDo).Guard(isBlockDo, "block do")
	if depth >= r.maxDepth {
		return r.tooDeep(begin)
	}
	body := comb.Map(comb.Many(r.nested(depth)), inner)
	return comb.Commit(comb.Map(comb.Concat(
		part(begin),
		comb.Singleton(body),
		part(statement(KindEndDo)),
	), r.outer(KindDoBlock, depth)))
}

// ifBlock matches IF ... THEN, its sections separated by ELSE IF and ELSE, and
// END IF. Empty sections leave no inner block behind.
func (r *recoverer) ifBlock(depth int) blockParser {
	begin := statement(KindIf).Guard(isBlockIf, "block if")
	if depth >= r.maxDepth {
		return r.tooDeep(begin)
	}
	body := comb.Map(comb.Many(r.nested(depth)), func(children []ast.Block) []ast.Block {
		if len(children) == 0 {
			return nil
		}
		return []ast.Block{inner(children)}
	})
	section := comb.Concat(
		body,
		comb.Optional(asBlock(statement(KindElseIf, KindElse))),
	).Guard(func(bs []ast.Block) bool { return len(bs) > 0 }, "statement")
	return comb.Commit(comb.Map(comb.Concat(
		part(begin),
		comb.Map(comb.Many(section), slicesConcat[ast.Block]),
		part(statement(KindEndIf)),
	), r.outer(KindIfBlock, depth)))
}

// unit matches a program unit: its header, its body and END. The header of a
// main program is optional.
func (r *recoverer) unit(kind string, headerOptional bool) blockParser {
	header := part(statement(kind))
	if headerOptional {
		header = comb.Optional(asBlock(statement(kind)))
	}
	body := comb.Map(comb.Many(r.item(0)), inner)
	return comb.Commit(comb.Map(comb.Concat(
		header,
		comb.Singleton(body),
		part(statement(endKindPrefix+kind, KindEnd)),
	), r.outer(kind+unitKindSuffix, 0)))
}

func (r *recoverer) source() blockParser {
	unit := comb.ChoiceNoBacktrack(
		r.unit(KindFunction, false),
		r.unit(KindSubroutine, false),
		r.unit(KindBlockData, false),
		r.unit(KindProgram, true),
	).Label("program unit")
	return comb.Map(comb.Concat(
		comb.Singleton(unit),
		comb.ManyTill(unit, comb.EOF[*ast.LogicalLine]()),
	), r.outer(KindSourceFile, 0))
}

// RecoverBlocks nests statements into program units and DO and IF blocks. The
// result is an [*ast.OuterBlock] of kind "source_file" holding one block per
// program unit. Old style DO and IF statements, whose extent is given by labels,
// are left as plain statements.
func RecoverBlocks(source string, lines []*ast.LogicalLine, opts Options) (*ast.OuterBlock, error) {
	r := newRecoverer(opts.MaxDepth, opts.Logger)
	res := r.source().Scan(lines, 0)
	if !res.OK() {
		pe := &ParseError{Stage: StageRecover, Expected: res.Expected, Err: ErrStructure}
		if res.Fatal() {
			pe.Expected, pe.Err = "", res.Err
		}
		pe.sp, pe.Found = logicalPosition(source, lines, res.Start)
		return nil, pe
	}
	return res.Value.(*ast.OuterBlock), nil
}

func logicalPosition(source string, lines []*ast.LogicalLine, pos int) (sourcePos, string) {
	if pos < len(lines) {
		return sourcePos{Source: source, Line: lines[pos].Line()}, lines[pos].Statement
	} else if len(lines) == 0 {
		return sourcePos{Source: source, Line: 1}, "end of input"
	}
	return sourcePos{Source: source, Line: lines[len(lines)-1].End() - 1}, "end of input"
}
