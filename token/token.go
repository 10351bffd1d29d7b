package token

import "strings"

// Tag classifies a [Token].
type Tag uint8

// List of all token tags of fixed-form source.
// When adding a new tag add it in between blocks since we use comparison functions to check properties of tags.
const (
	// Not to be used in code. Is to catch uninitialized tokens.
	Undefined Tag = iota // <undefined>

	// ==================== LITERALS ====================

	Character // character
	Logical   // logical
	Real      // real
	Integer   // integer

	// ==================== DOTTED OPERATORS ====================

	// Relational operators
	LT // lt
	LE // le
	EQ // eq
	NE // ne
	GT // gt
	GE // ge

	// Logical operators
	NOT  // not
	AND  // and
	OR   // or
	EQV  // eqv
	NEQV // neqv

	// ==================== OPERATORS / DELIMITERS ====================

	Equals     // equals
	Plus       // plus
	Minus      // minus
	Exponent   // exponent
	Times      // times
	Concat     // concat
	Slash      // slash
	LParen     // lparen
	RParen     // rparen
	Dot        // dot
	Comma      // comma
	Dollar     // dollar
	Apostrophe // apostrophe
	Quote      // quote
	Colon      // colon
	LAngle     // langle
	RAngle     // rangle

	// ==================== OTHER ====================

	Name       // name
	Whitespace // whitespace
	Comment    // comment
	Unknown    // unknown

	numTags
)

var tagNames = [numTags]string{
	Undefined: "<undefined>",
	Character: "character", Logical: "logical", Real: "real", Integer: "integer",
	LT: "lt", LE: "le", EQ: "eq", NE: "ne", GT: "gt", GE: "ge",
	NOT: "not", AND: "and", OR: "or", EQV: "eqv", NEQV: "neqv",
	Equals: "equals", Plus: "plus", Minus: "minus", Exponent: "exponent", Times: "times",
	Concat: "concat", Slash: "slash", LParen: "lparen", RParen: "rparen", Dot: "dot",
	Comma: "comma", Dollar: "dollar", Apostrophe: "apostrophe", Quote: "quote",
	Colon: "colon", LAngle: "langle", RAngle: "rangle",
	Name: "name", Whitespace: "whitespace", Comment: "comment", Unknown: "unknown",
}

func (t Tag) String() string {
	if t >= numTags {
		return "<invalid>"
	}
	return tagNames[t]
}

// IsSignificant reports whether the tag carries meaning for the statement,
// that is, it is neither white space nor a trailing comment.
func (t Tag) IsSignificant() bool { return t != Whitespace && t != Comment }

// Token is a lexeme of a line of source code. Text is the input text as written.
type Token struct {
	Tag  Tag
	Text string
}

func (t Token) String() string {
	return t.Tag.String() + "{" + t.Text + "}"
}

// Is reports whether t is a name spelled word, ignoring case.
func (t Token) Is(word string) bool {
	return t.Tag == Name && strings.EqualFold(t.Text, word)
}

// Text concatenates the text of toks.
func Text(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Significant returns the tokens of toks that are neither white space nor comments.
func Significant(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Tag.IsSignificant() {
			out = append(out, t)
		}
	}
	return out
}
