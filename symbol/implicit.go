package symbol

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/soypat/go-fixedform/comb"
	"github.com/soypat/go-fixedform/token"
)

// ImplicitRules maps the first letter of a name to the type it gets when it is
// used without a type statement.
type ImplicitRules struct {
	IsNone      bool       // IMPLICIT NONE specified?
	LetterTypes [26]string // Type for each letter A-Z (empty = no rule)
}

// DefaultImplicitRules returns the default Fortran 77 implicit typing rules:
// I-N are INTEGER, A-H and O-Z are REAL.
func DefaultImplicitRules() ImplicitRules {
	var rules ImplicitRules
	for ch := 'A'; ch <= 'Z'; ch++ {
		rules.LetterTypes[ch-'A'] = "real"
	}
	for ch := 'I'; ch <= 'N'; ch++ {
		rules.LetterTypes[ch-'A'] = "integer"
	}
	return rules
}

// TypeFor returns the implicit type of name, or "" when IMPLICIT NONE is active
// or name does not start with a letter.
func (r *ImplicitRules) TypeFor(name string) string {
	if r.IsNone || name == "" {
		return ""
	}
	letter := name[0] &^ ('a' - 'A') // ASCII upper case.
	if letter < 'A' || letter > 'Z' {
		return ""
	}
	return r.LetterTypes[letter-'A']
}

// Apply records rule in r. An IMPLICIT NONE rule clears every letter.
func (r *ImplicitRules) Apply(rule ImplicitRule) {
	if rule.Type == "" {
		*r = ImplicitRules{IsNone: true}
		return
	}
	r.IsNone = false
	for ch := rule.First; ch <= rule.Last; ch++ {
		r.LetterTypes[ch-'A'] = rule.Type
	}
}

// ImplicitRule is a letter range of an IMPLICIT statement, as in REAL (A-H).
// The zero Type stands for IMPLICIT NONE.
type ImplicitRule struct {
	Type  string
	First byte // upper case letter
	Last  byte
}

// Letters renders the range as in the source, "A-H" or "X".
func (r ImplicitRule) Letters() string {
	if r.First == r.Last {
		return string(r.First)
	}
	return string(r.First) + "-" + string(r.Last)
}

func (r ImplicitRule) String() string {
	if r.Type == "" {
		return "none"
	}
	return r.Type + " (" + r.Letters() + ")"
}

// MarshalYAML renders a rule as its source text.
func (r ImplicitRule) MarshalYAML() (any, error) { return r.String(), nil }

var errImplicit = errors.New("malformed IMPLICIT statement")

type tokenParser[T any] = *comb.Parser[token.Token, T]

func word(w string) tokenParser[token.Token] {
	return comb.Satisfy(func(t token.Token) bool { return t.Is(w) }, strings.ToUpper(w))
}

func tag(tg token.Tag) tokenParser[token.Token] {
	return comb.Satisfy(func(t token.Token) bool { return t.Tag == tg }, tg.String())
}

var implicitStatement = func() tokenParser[[]ImplicitRule] {
	// CHARACTER*8 (C): the length does not change the type.
	length := comb.Optional(comb.Right(tag(token.Times), tag(token.Integer)))
	letter := comb.Map(comb.Satisfy(func(t token.Token) bool {
		return t.Tag == token.Name && len(t.Text) == 1
	}, "letter"), func(t token.Token) byte { return t.Text[0] &^ ('a' - 'A') })
	letterRange := comb.Map(
		comb.Concat(comb.Singleton(letter), comb.Optional(comb.Right(tag(token.Minus), letter))),
		func(bs []byte) ImplicitRule { return ImplicitRule{First: bs[0], Last: bs[len(bs)-1]} },
	).Guard(func(r ImplicitRule) bool {
		return 'A' <= r.First && r.First <= r.Last && r.Last <= 'Z'
	}, "ascending letter range")
	ranges := comb.Right(tag(token.LParen), comb.Left(comb.SeparatedBy(letterRange, tag(token.Comma)), tag(token.RParen)))
	typed := func(typ string, keyword tokenParser[token.Token]) tokenParser[[]ImplicitRule] {
		return comb.Map(comb.Right(comb.Left(keyword, length), ranges), func(rules []ImplicitRule) []ImplicitRule {
			for i := range rules {
				rules[i].Type = typ
			}
			return rules
		})
	}
	spec := comb.Choice(
		typed("integer", word("integer")),
		typed("real", word("real")),
		typed("double precision", comb.Right(word("double"), word("precision"))),
		typed("double precision", word("doubleprecision")),
		typed("complex", word("complex")),
		typed("logical", word("logical")),
		typed("character", word("character")),
	).Label("type")
	none := comb.Map(word("none"), func(token.Token) []ImplicitRule { return []ImplicitRule{{}} })
	specs := comb.Map(comb.SeparatedBy(spec, tag(token.Comma)), func(s [][]ImplicitRule) []ImplicitRule {
		return slices.Concat(s...)
	})
	return comb.Left(comb.Choice(none, specs), comb.EOF[token.Token]())
}()

// ParseImplicit parses the tokens of an IMPLICIT statement following the
// IMPLICIT keyword, for instance `DOUBLE PRECISION (A-H, O-Z)` or `NONE`.
func ParseImplicit(toks []token.Token) ([]ImplicitRule, error) {
	in := token.Significant(toks)
	rules, err := implicitStatement.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errImplicit, strings.TrimSpace(token.Text(toks)), err)
	}
	return rules, nil
}
