package token

import (
	"strings"
	"unicode/utf8"

	"github.com/soypat/go-fixedform/comb"
)

type lexeme = *comb.Parser[rune, string]

func tagged(tag Tag, p lexeme) *comb.Parser[rune, Token] {
	return comb.Map(p, func(text string) Token { return Token{Tag: tag, Text: text} })
}

func optional(p lexeme) lexeme {
	return comb.Map(comb.Optional(p), func(s []string) string { return strings.Join(s, "") })
}

func joinAll(p *comb.Parser[rune, []string]) lexeme {
	return comb.Map(p, func(s []string) string { return strings.Join(s, "") })
}

var (
	name = comb.Join(
		comb.Char(comb.Letter),
		comb.Text(comb.Many(comb.Choice(comb.Alphanumeric, comb.OneOf("_")))),
	).Label("name")

	logical = comb.Choice(comb.ExactFold(".true."), comb.ExactFold(".false."))

	charSegment = comb.Choice(
		comb.Join(comb.Exact(`"`), comb.Text(comb.Many(comb.NoneOf(`"`))), comb.Exact(`"`)),
		comb.Join(comb.Exact("'"), comb.Text(comb.Many(comb.NoneOf("'"))), comb.Exact("'")),
	)
	// Adjacent segments spell a doubled quote inside the literal: 'IT''S'.
	character = joinAll(comb.AtLeastOnce(charSegment))

	comment = comb.Join(comb.Exact("!"), comb.Text(comb.Many(comb.NoneOf("\n"))))

	// A dot directly after digits belongs to a following dotted operator in 1.EQ.2.
	dotOperator = comb.Join(comb.Exact("."), comb.Word, comb.Exact("."))
	fraction    = comb.Join(
		comb.Right(comb.Not(dotOperator, "fraction"), comb.Exact(".")),
		comb.Text(comb.Many(comb.Digit)),
	)
	basicReal = comb.Choice(
		comb.Join(comb.Digits, fraction),
		comb.Join(comb.Exact("."), comb.Digits),
	)
	exponentInt    = comb.Join(comb.Text(comb.Optional(comb.OneOf("+-"))), comb.Digits)
	singleExponent = comb.Join(comb.Char(comb.OneOf("eE")), exponentInt)
	doubleExponent = comb.Join(comb.Char(comb.OneOf("dD")), exponentInt)
	singleReal     = comb.Choice(
		comb.Join(basicReal, optional(singleExponent)),
		comb.Join(comb.Digits, singleExponent),
	)
	doubleReal = comb.Join(comb.Choice(basicReal, comb.Digits), doubleExponent)
	realLit    = comb.Choice(doubleReal, singleReal).Label("real")

	integer = comb.Digits

	single = comb.Choice(
		tagged(Character, character),
		tagged(Comment, comment),
		tagged(Logical, logical),
		tagged(LT, comb.ExactFold(".lt.")),
		tagged(LE, comb.ExactFold(".le.")),
		tagged(EQ, comb.ExactFold(".eq.")),
		tagged(NE, comb.ExactFold(".ne.")),
		tagged(GT, comb.ExactFold(".gt.")),
		tagged(GE, comb.ExactFold(".ge.")),
		tagged(NOT, comb.ExactFold(".not.")),
		tagged(AND, comb.ExactFold(".and.")),
		tagged(OR, comb.ExactFold(".or.")),
		tagged(EQV, comb.ExactFold(".eqv.")),
		tagged(NEQV, comb.ExactFold(".neqv.")),
		tagged(Real, realLit),
		tagged(Integer, integer),
		tagged(Name, name),
		tagged(Equals, comb.Exact("=")),
		tagged(Plus, comb.Exact("+")),
		tagged(Minus, comb.Exact("-")),
		tagged(Exponent, comb.Exact("**")),
		tagged(Times, comb.Exact("*")),
		tagged(Concat, comb.Exact("//")),
		tagged(Slash, comb.Exact("/")),
		tagged(LParen, comb.Exact("(")),
		tagged(RParen, comb.Exact(")")),
		tagged(Dot, comb.Exact(".")),
		tagged(Comma, comb.Exact(",")),
		tagged(Dollar, comb.Exact("$")),
		tagged(Apostrophe, comb.Exact("'")),
		tagged(Quote, comb.Exact(`"`)),
		tagged(Colon, comb.Exact(":")),
		tagged(LAngle, comb.Exact("<")),
		tagged(RAngle, comb.Exact(">")),
		tagged(Whitespace, comb.Spaces),
		tagged(Unknown, comb.Char(comb.Any[rune]())),
	)

	tokenizer = comb.Many(single)
)

// Tokenize splits code into tokens. It never fails: characters outside of the
// grammar become [Unknown] tokens, so the text of the result always equals code.
// Bytes that are not valid UTF-8 are kept as written.
func Tokenize(code string) []Token {
	toks := TokenizeFrom([]rune(code), 0)
	off := 0
	for i := range toks {
		n := RuneOffset(code[off:], utf8.RuneCountInString(toks[i].Text))
		toks[i].Text = code[off : off+n]
		off += n
	}
	return toks
}

// TokenizeFrom tokenizes code starting at rune offset pos. Token text is
// spelled from the runes, so invalid UTF-8 in the source of code reads as
// [utf8.RuneError]; use [Tokenize] to keep the bytes.
func TokenizeFrom(code []rune, pos int) []Token {
	r := tokenizer.Scan(code, pos)
	return r.Value
}

// RuneOffset returns the byte offset in s of the rune at index n of []rune(s).
// Every byte that is not valid UTF-8 counts as one rune, as in the conversion.
func RuneOffset(s string, n int) int {
	off := 0
	for ; n > 0 && off < len(s); n-- {
		_, w := utf8.DecodeRuneInString(s[off:])
		off += w
	}
	return off
}
