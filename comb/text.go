package comb

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Exact matches the runes of lit.
func Exact(lit string) *Parser[rune, string] {
	return exact(lit, false)
}

// ExactFold matches the runes of lit under simple case folding.
// The value is the matched input text as written.
func ExactFold(lit string) *Parser[rune, string] {
	return exact(lit, true)
}

func exact(lit string, fold bool) *Parser[rune, string] {
	want := []rune(lit)
	expected := quote(lit)
	return FromFunc(expected, func(in []rune, pos int) Result[string] {
		if pos+len(want) > len(in) {
			return Failure[string](pos, expected)
		}
		for i, c := range want {
			got := in[pos+i]
			if got != c && !(fold && unicode.ToLower(got) == unicode.ToLower(c)) {
				return Failure[string](pos, expected)
			}
		}
		return Success(pos, pos+len(want), string(in[pos:pos+len(want)]))
	})
}

// OneOf matches a single rune contained in chars.
func OneOf(chars string) *Parser[rune, rune] {
	return Satisfy(func(c rune) bool { return strings.ContainsRune(chars, c) }, "one of "+quote(chars))
}

// NoneOf matches a single rune not contained in chars.
func NoneOf(chars string) *Parser[rune, rune] {
	return Satisfy(func(c rune) bool { return !strings.ContainsRune(chars, c) }, "none of "+quote(chars))
}

// Text converts a parser of runes into a parser of the string they spell.
func Text(p *Parser[rune, []rune]) *Parser[rune, string] {
	return Map(p, func(rs []rune) string { return string(rs) })
}

// Char converts a single rune parser into a string parser.
func Char(p *Parser[rune, rune]) *Parser[rune, string] {
	return Map(p, func(c rune) string { return string(c) })
}

var (
	// Space matches one white space rune. Newlines count, so statement code
	// joined across continuation lines reads as one run of text.
	Space = Satisfy(unicode.IsSpace, "whitespace")
	// Spaces matches one or more white space runes.
	Spaces = Text(AtLeastOnce(Space)).Label("whitespace")
	// Whitespace matches optional white space.
	Whitespace = Text(Many(Space)).Label("optional whitespace")

	// Letter matches one Unicode letter.
	Letter = Satisfy(unicode.IsLetter, "letter")
	// Word matches a run of letters.
	Word = Text(AtLeastOnce(Letter)).Label("word")

	// Digit matches one decimal digit.
	Digit = Satisfy(unicode.IsDigit, "digit")
	// Digits matches a run of digits.
	Digits = Text(AtLeastOnce(Digit)).Label("digits")

	// Alphanumeric matches one letter or digit.
	Alphanumeric = Satisfy(func(c rune) bool { return unicode.IsLetter(c) || unicode.IsDigit(c) }, "alphanumeric")
)

// Liberal matches p surrounded by optional white space and keeps p's value.
func Liberal[T any](p *Parser[rune, T]) *Parser[rune, T] {
	return Left(Right(Whitespace, p), Whitespace)
}

// Regex matches pattern anchored at the current position. The value holds the whole
// match followed by the submatches; unmatched groups are empty strings.
// Regex panics if pattern does not compile.
func Regex(pattern string) *Parser[rune, []string] {
	re := regexp.MustCompile(`\A(?:` + pattern + `)`)
	return FromFunc(pattern, func(in []rune, pos int) Result[[]string] {
		if pos > len(in) {
			return Failure[[]string](pos, pattern)
		}
		s := string(in[pos:])
		idx := re.FindStringSubmatchIndex(s)
		if idx == nil {
			return Failure[[]string](pos, pattern)
		}
		groups := make([]string, len(idx)/2)
		for i := range groups {
			if a, b := idx[2*i], idx[2*i+1]; a >= 0 {
				groups[i] = s[a:b]
			}
		}
		return Success(pos, pos+utf8.RuneCountInString(s[:idx[1]]), groups)
	})
}

// SeparatedBy matches one or more items interleaved with sep and collects the items.
func SeparatedBy[E, T, S any](item *Parser[E, T], sep *Parser[E, S]) *Parser[E, []T] {
	return Concat(Singleton(item), Many(Right(sep, item)))
}

// SeparatedByOr is [SeparatedBy] falling back to empty when not even one item matches.
func SeparatedByOr[E, T, S any](item *Parser[E, T], sep *Parser[E, S], empty *Parser[E, []T]) *Parser[E, []T] {
	return Choice(SeparatedBy(item, sep), empty)
}
