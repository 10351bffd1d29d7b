// Package ast declares the nodes of a recovered fixed-form source tree.
//
// Physical lines ([RawLine]) are grouped into statements ([LogicalLine]), which are
// the leaves of a tree of [InnerBlock] and [OuterBlock] nodes. All nodes are
// immutable once built.
package ast

import (
	"strconv"

	"github.com/soypat/go-fixedform/token"
)

type Node interface {
	// AppendTokenLiteral appends the node's kind: a line kind, a statement kind
	// or a block kind.
	AppendTokenLiteral(dst []byte) []byte
	// AppendString appends the source text of the node as it was read.
	AppendString(dst []byte) []byte
	Pos() int // 1-based number of the first physical line belonging to the node.
	End() int // number of the physical line immediately after the node.
}

// Block is a node of the recovered tree: a [*LogicalLine] leaf, an [*InnerBlock]
// or an [*OuterBlock].
type Block interface {
	Node
	blockNode()
}

// LineKind classifies a physical line.
type LineKind uint8

const (
	Comment LineKind = iota
	Continuation
	Initial
)

func (k LineKind) String() string {
	switch k {
	case Comment:
		return "comment"
	case Continuation:
		return "continuation"
	case Initial:
		return "initial"
	}
	return "LineKind(" + strconv.Itoa(int(k)) + ")"
}

// RawLine is one classified physical line.
type RawLine struct {
	Kind LineKind
	Line int // 1-based line number in the file.
	// Original is the line as read, line ending included.
	Original string
	// Margin holds columns 1 to 6 as written. Lines shorter than six columns
	// keep all of their text in Margin.
	Margin string
	// Code is the text from column 7 onward without the line ending.
	Code string
	EOL  string
	// Tokens of Code. Their text always spells Code.
	Tokens []token.Token
	// Rest holds the tokens after the statement keywords of an initial line
	// and all tokens of a continuation line.
	Rest []token.Token
	// Statement is the statement kind of an initial line, "assignment" when no
	// keyword sequence matched.
	Statement string
	Label     uint32
	HasLabel  bool // Label is set.
	// Cont is the continuation marker in column 6 of a continuation line.
	Cont rune
}

func (l *RawLine) AppendTokenLiteral(dst []byte) []byte {
	return append(dst, l.Kind.String()...)
}

func (l *RawLine) AppendString(dst []byte) []byte {
	return append(dst, l.Original...)
}

func (l *RawLine) Pos() int { return l.Line }
func (l *RawLine) End() int { return l.Line + 1 }

// LogicalLine is a statement: one initial line together with its leading
// comments and its trailing comment and continuation lines.
type LogicalLine struct {
	Lines     []*RawLine
	Statement string
	Label     uint32
	HasLabel  bool
	// Code joins the code of the non-comment lines with newlines.
	Code string
	// Tokens and Rest concatenate the tokens of the non-comment lines.
	Tokens []token.Token
	Rest   []token.Token
}

func (*LogicalLine) blockNode() {}

func (l *LogicalLine) AppendTokenLiteral(dst []byte) []byte {
	return append(dst, l.Statement...)
}

func (l *LogicalLine) AppendString(dst []byte) []byte {
	for _, raw := range l.Lines {
		dst = raw.AppendString(dst)
	}
	return dst
}

func (l *LogicalLine) Pos() int {
	if len(l.Lines) == 0 {
		return 0
	}
	return l.Lines[0].Pos()
}

func (l *LogicalLine) End() int {
	if len(l.Lines) == 0 {
		return 0
	}
	return l.Lines[len(l.Lines)-1].End()
}

// Initial returns the initial line of the statement.
func (l *LogicalLine) Initial() *RawLine {
	for _, raw := range l.Lines {
		if raw.Kind == Initial {
			return raw
		}
	}
	return nil
}

// Line returns the number of the initial line, the line diagnostics refer to.
func (l *LogicalLine) Line() int {
	if init := l.Initial(); init != nil {
		return init.Line
	}
	return l.Pos()
}

// InnerBlock is a straight sequence of statements and nested blocks.
type InnerBlock struct {
	Children []Block
}

func (*InnerBlock) blockNode() {}

func (b *InnerBlock) AppendTokenLiteral(dst []byte) []byte {
	return append(dst, "inner_block"...)
}

func (b *InnerBlock) AppendString(dst []byte) []byte {
	for _, c := range b.Children {
		dst = c.AppendString(dst)
	}
	return dst
}

func (b *InnerBlock) Pos() int { return firstPos(b.Children) }
func (b *InnerBlock) End() int { return lastEnd(b.Children) }

// OuterBlock is a delimited construct: a program unit, the whole source file or a
// block DO or IF. Parts hold the opening statement, the bodies, separating
// statements such as ELSE and the closing statement in source order.
type OuterBlock struct {
	Kind  string
	Parts []Block
}

func (*OuterBlock) blockNode() {}

func (b *OuterBlock) AppendTokenLiteral(dst []byte) []byte {
	return append(dst, b.Kind...)
}

func (b *OuterBlock) AppendString(dst []byte) []byte {
	for _, p := range b.Parts {
		dst = p.AppendString(dst)
	}
	return dst
}

func (b *OuterBlock) Pos() int { return firstPos(b.Parts) }
func (b *OuterBlock) End() int { return lastEnd(b.Parts) }

func firstPos(blocks []Block) int {
	for _, b := range blocks {
		if p := b.Pos(); p > 0 {
			return p
		}
	}
	return 0
}

func lastEnd(blocks []Block) int {
	for i := len(blocks) - 1; i >= 0; i-- {
		if e := blocks[i].End(); e > 0 {
			return e
		}
	}
	return 0
}
