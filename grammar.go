package fixedform

import (
	"slices"
	"strings"

	"github.com/soypat/go-fixedform/comb"
	"github.com/soypat/go-fixedform/token"
)

// Fixed-form columns, 0-based.
const (
	labelWidth         = 5
	continuationColumn = 5
	marginColumn       = continuationColumn + 1
)

// Statement kinds the block recoverer relies on.
const (
	KindAssignment = "assignment"
	KindIf         = "if"
	KindElseIf     = "else_if"
	KindElse       = "else"
	KindEndIf      = "end_if"
	KindDo         = "do"
	KindEndDo      = "end_do"
	KindEnd        = "end"
	KindFormat     = "format"
	KindImplicit   = "implicit"
	KindProgram    = "program"
	KindFunction   = "function"
	KindSubroutine = "subroutine"
	KindBlockData  = "block_data"
	KindSourceFile = "source_file"
	KindIfBlock    = "if_block"
	KindDoBlock    = "do_block"
	unitKindSuffix = "_block"
	endKindPrefix  = "end_"
)

// Class groups statements of the catalogue.
type Class uint8

const (
	ControlBlock    Class = iota // if, else, do and their terminators
	ControlNonBlock              // go to, call, return, continue, stop, pause
	Assign                       // assign
	IO                           // read, write, open, ...
	Type                         // integer, real, double precision, ...
	Specification                // dimension, common, implicit, ...
	MiscNonExec                  // entry, data, format
	TopLevel                     // program unit headers and END statements
)

var classNames = [...]string{
	ControlBlock:    "control block",
	ControlNonBlock: "control nonblock",
	Assign:          "assign",
	IO:              "io",
	Type:            "type",
	Specification:   "specification",
	MiscNonExec:     "misc nonexec",
	TopLevel:        "top level",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "<invalid class>"
}

// IsExecutable reports whether statements of the class are executable.
func (c Class) IsExecutable() bool { return c <= IO }

// IsSpecification reports whether the class declares names: type statements
// and the other specification statements.
func (c Class) IsSpecification() bool { return c == Type || c == Specification }

// IsNonBlock reports whether statements of the class never open or close a block.
func (c Class) IsNonBlock() bool { return c != ControlBlock && c != TopLevel }

// Statement is an entry of the statement catalogue: a sequence of keywords that
// identifies a statement kind.
type Statement struct {
	Kind  string   // e.g. "end_if".
	Words []string // e.g. {"end", "if"}.
	Class Class
	match *comb.Parser[rune, string]
}

// Match matches the keywords of s in code at pos, ignoring case and white space
// around and between them. It returns the position after the keywords.
func (s Statement) Match(code []rune, pos int) (end int, ok bool) {
	r := s.match.Scan(code, pos)
	return r.End, r.OK()
}

func (s Statement) key() string { return strings.Join(s.Words, "") }

var groups = []struct {
	class Class
	words [][]string
}{
	{ControlBlock, [][]string{{"if"}, {"else", "if"}, {"else"}, {"end", "if"}, {"do"}, {"end", "do"}}},
	{ControlNonBlock, [][]string{{"go", "to"}, {"call"}, {"return"}, {"continue"}, {"stop"}, {"pause"}}},
	{Assign, [][]string{{"assign"}}},
	{IO, [][]string{{"read"}, {"write"}, {"print"}, {"rewind"}, {"backspace"}, {"endfile"}, {"open"}, {"close"}, {"inquire"}}},
	{Type, [][]string{{"integer"}, {"real"}, {"double", "precision"}, {"complex"}, {"logical"}, {"character"}}},
	{Specification, [][]string{{"dimension"}, {"common"}, {"equivalence"}, {"implicit"}, {"parameter"}, {"external"}, {"intrinsic"}, {"save"}}},
	{MiscNonExec, [][]string{{"entry"}, {"data"}, {"format"}}},
	{TopLevel, [][]string{
		{"program"}, {"end", "program"},
		{"integer", "function"}, {"real", "function"}, {"double", "precision", "function"},
		{"complex", "function"}, {"logical", "function"}, {"character", "function"},
		{"function"}, {"end", "function"},
		{"subroutine"}, {"end", "subroutine"},
		{"block", "data"}, {"end", "block", "data"},
		{"end"},
	}},
}

var catalogue = buildCatalogue()

func buildCatalogue() []Statement {
	var entries []Statement
	for _, g := range groups {
		for _, words := range g.words {
			kind := strings.Join(words, "_")
			if g.class == TopLevel && len(words) > 1 && words[len(words)-1] == "function" {
				// Typed function headers open a function unit like FUNCTION does.
				kind = KindFunction
			}
			keywords := make([]*comb.Parser[rune, string], len(words))
			for i, w := range words {
				keywords[i] = comb.Liberal(comb.ExactFold(w))
			}
			entries = append(entries, Statement{
				Kind:  kind,
				Words: words,
				Class: g.class,
				match: comb.Join(keywords...).Label(strings.Join(words, " ")),
			})
		}
	}
	return repairShadows(entries)
}

// repairShadows moves every entry ahead of the first earlier entry whose
// keywords spell a prefix of its own, so that DOUBLE PRECISION is not taken for
// DO nor INTEGER FUNCTION for INTEGER. Relative order is kept otherwise.
func repairShadows(entries []Statement) []Statement {
	out := make([]Statement, 0, len(entries))
	for _, e := range entries {
		key := e.key()
		at := len(out)
		for i, prev := range out {
			if pk := prev.key(); len(pk) < len(key) && strings.HasPrefix(key, pk) {
				at = i
				break
			}
		}
		out = slices.Insert(out, at, e)
	}
	return out
}

// Catalogue returns the statement catalogue in matching order. The first entry
// whose keywords match a line's code determines the statement kind.
func Catalogue() []Statement { return slices.Clone(catalogue) }

// Classes returns the statement kinds of the catalogue belonging to class, in
// matching order and without duplicates.
func Classes(class Class) []string {
	var kinds []string
	for _, s := range catalogue {
		if s.Class == class && !slices.Contains(kinds, s.Kind) {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

// Keywords returns every keyword used by the catalogue, lower case.
func Keywords() []string {
	var words []string
	for _, s := range catalogue {
		for _, w := range s.Words {
			if !slices.Contains(words, w) {
				words = append(words, w)
			}
		}
	}
	return words
}

var classOf = func() map[string]Class {
	m := make(map[string]Class, len(catalogue))
	for _, s := range catalogue {
		m[s.Kind] = s.Class
	}
	return m
}()

// ClassOf returns the class of a statement kind. Assignments and unknown kinds
// belong to no class.
func ClassOf(kind string) (Class, bool) {
	c, ok := classOf[kind]
	return c, ok
}

// matchStatement finds the statement kind of the code of an initial line and the
// position after its keywords. Code shaped like an assignment is an assignment
// even when it starts with a keyword, as in DOSE = 1 or IFLAG = 0.
func matchStatement(code []rune, toks []token.Token) (kind string, end int) {
	if comb.Matches(assignmentShape, token.Significant(toks), 0) {
		return KindAssignment, 0
	}
	for _, s := range catalogue {
		if end, ok := s.Match(code, 0); ok {
			return s.Kind, end
		}
	}
	return KindAssignment, 0
}

// assignmentShape matches the significant tokens of `name(...)... = expression`
// where the expression holds no comma outside of parentheses. The comma tells
// DO10I=1,5 apart from DO10I=1.5.
var assignmentShape = func() *comb.Parser[token.Token, struct{}] {
	type tokens = *comb.Parser[token.Token, []token.Token]
	is := func(tag token.Tag) *comb.Parser[token.Token, token.Token] {
		return comb.Satisfy(func(t token.Token) bool { return t.Tag == tag }, tag.String())
	}
	var group tokens
	group = comb.Lazy("parenthesized", func() *comb.Parser[token.Token, []token.Token] {
		inside := comb.Satisfy(func(t token.Token) bool { return t.Tag != token.LParen && t.Tag != token.RParen }, "token")
		return comb.Concat(
			comb.Singleton(is(token.LParen)),
			comb.Map(comb.Many(comb.Choice(group, comb.Singleton(inside))), slicesConcat[token.Token]),
			comb.Singleton(is(token.RParen)),
		)
	})
	topLevel := comb.Satisfy(func(t token.Token) bool {
		return t.Tag != token.LParen && t.Tag != token.RParen && t.Tag != token.Comma
	}, "expression")
	shape := comb.Concat(
		comb.Singleton(is(token.Name)),
		comb.Map(comb.Many(group), slicesConcat[token.Token]),
		comb.Singleton(is(token.Equals)),
		comb.Map(comb.AtLeastOnce(comb.Choice(group, comb.Singleton(topLevel))), slicesConcat[token.Token]),
	)
	return comb.Map(comb.Left(shape, comb.EOF[token.Token]()), func([]token.Token) struct{} { return struct{}{} })
}()

func slicesConcat[T any](s [][]T) []T { return slices.Concat(s...) }
