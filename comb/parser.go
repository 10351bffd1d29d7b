// Package comb implements parser combinators over slices of arbitrary elements.
//
// A [Parser] scans an input slice starting at a position and returns a [Result]:
// either a success covering [Start, End) with a value, or a failure holding the
// position it failed at and a description of what was expected. Failures are values;
// nothing in this package panics or returns out of band while scanning.
//
// Text parsers work on []rune. Record parsers work on any element type, for instance
// a slice of classified source lines.
//
// Parsers are immutable once built and may be shared between goroutines and reused
// across inputs.
package comb

import (
	"slices"
	"strconv"
)

type kind uint8

const (
	kindLeaf kind = iota
	kindSequence
	kindChoice
	kindChoiceNoBacktrack
)

// Parser scans a []E and produces a value of type T.
type Parser[E, T any] struct {
	scan     func(in []E, pos int) Result[T]
	expected string
	// n-ary nodes keep their operands so that building a sequence or choice out of
	// another one of the same kind flattens instead of nesting.
	kind    kind
	parsers []*Parser[E, T]
}

// FromFunc returns a parser backed by scan. expected describes the parser in the
// failure messages of choices containing it.
func FromFunc[E, T any](expected string, scan func(in []E, pos int) Result[T]) *Parser[E, T] {
	return &Parser[E, T]{scan: scan, expected: expected}
}

// Scan applies the parser to in at pos.
func (p *Parser[E, T]) Scan(in []E, pos int) Result[T] {
	return p.scan(in, pos)
}

// Expected returns the static description of what the parser accepts.
func (p *Parser[E, T]) Expected() string { return p.expected }

// Parse scans in from its start and returns the value on success. It does not
// require the whole input to be consumed; sequence with [EOF] for that.
func (p *Parser[E, T]) Parse(in []E) (T, error) {
	r := p.Scan(in, 0)
	if !r.OK() {
		var zero T
		return zero, &Error{Pos: r.Start, Location: Location(in, r.Start), Expected: r.Expected, Err: r.Err}
	}
	return r.Value, nil
}

// Error is returned by [Parser.Parse] on failure.
type Error struct {
	Pos      int
	Location string
	Expected string
	Err      error // Set for fatal failures.
}

func (e *Error) Error() string {
	var b []byte
	if e.Err != nil {
		b = append(b, e.Err.Error()...)
	} else {
		b = append(b, "expected "...)
		b = append(b, e.Expected...)
	}
	b = append(b, " at "...)
	b = append(b, e.Location...)
	return string(b)
}

func (e *Error) Unwrap() error { return e.Err }

// Label replaces the description of failures located exactly where p started.
// Failures from deeper inside p keep their own, more precise, description.
func (p *Parser[E, T]) Label(expected string) *Parser[E, T] {
	return FromFunc(expected, func(in []E, pos int) Result[T] {
		r := p.Scan(in, pos)
		if !r.OK() && r.Err == nil && r.Start == pos {
			r.Expected = expected
		}
		return r
	})
}

// Guard fails with expected at the start position when p succeeds with a value that
// does not satisfy pred.
func (p *Parser[E, T]) Guard(pred func(T) bool, expected string) *Parser[E, T] {
	return FromFunc(p.expected, func(in []E, pos int) Result[T] {
		r := p.Scan(in, pos)
		if r.OK() && !pred(r.Value) {
			return Failure[T](pos, expected)
		}
		return r
	})
}

// Choice is shorthand for Choice(p, other).
func (p *Parser[E, T]) Choice(other *Parser[E, T]) *Parser[E, T] {
	return Choice(p, other)
}

// ChoiceNoBacktrack is shorthand for ChoiceNoBacktrack(p, other).
func (p *Parser[E, T]) ChoiceNoBacktrack(other *Parser[E, T]) *Parser[E, T] {
	return ChoiceNoBacktrack(p, other)
}

// Sequence applies ps one after another and combines their values with join.
// It fails with the failure of the first parser that fails.
func Sequence[E, T any](join func(a, b T) T, ps ...*Parser[E, T]) *Parser[E, T] {
	q := &Parser[E, T]{kind: kindSequence, parsers: flatten(kindSequence, ps)}
	q.expected = mergeExpected(q.parsers, " followed by ")
	q.scan = func(in []E, pos int) Result[T] {
		var value T
		end := pos
		for i, sub := range q.parsers {
			r := sub.Scan(in, end)
			if !r.OK() {
				return r
			}
			if i == 0 {
				value = r.Value
			} else {
				value = join(value, r.Value)
			}
			end = r.End
		}
		return Success(pos, end, value)
	}
	return q
}

// Concat is a [Sequence] whose values are lists, concatenated in order.
func Concat[E, T any](ps ...*Parser[E, []T]) *Parser[E, []T] {
	return Sequence(func(a, b []T) []T { return slices.Concat(a, b) }, ps...)
}

// Join is a [Sequence] whose values are strings, concatenated in order.
func Join[E any](ps ...*Parser[E, string]) *Parser[E, string] {
	return Sequence(func(a, b string) string { return a + b }, ps...)
}

// Choice tries each parser from the same start position and returns the first
// success. It backtracks over any failure that is neither committed nor fatal.
// When every alternative fails it fails at the start position with the
// alternatives' descriptions joined by "or".
func Choice[E, T any](ps ...*Parser[E, T]) *Parser[E, T] {
	q := &Parser[E, T]{kind: kindChoice, parsers: flatten(kindChoice, ps)}
	q.expected = mergeExpected(q.parsers, " or ")
	q.scan = func(in []E, pos int) Result[T] {
		for _, sub := range q.parsers {
			r := sub.Scan(in, pos)
			if r.OK() || !r.recoverable() {
				return r
			}
		}
		return Failure[T](pos, q.expected)
	}
	return q
}

// ChoiceNoBacktrack tries the next alternative only when the previous one failed
// without getting past the start position. A failure further along is returned
// unchanged: once an alternative has consumed input it owns the input.
func ChoiceNoBacktrack[E, T any](ps ...*Parser[E, T]) *Parser[E, T] {
	q := &Parser[E, T]{kind: kindChoiceNoBacktrack, parsers: flatten(kindChoiceNoBacktrack, ps)}
	q.expected = mergeExpected(q.parsers, " or ")
	q.scan = func(in []E, pos int) Result[T] {
		for _, sub := range q.parsers {
			r := sub.Scan(in, pos)
			if r.OK() || !r.recoverable() || r.Start != pos {
				return r
			}
		}
		return Failure[T](pos, q.expected)
	}
	return q
}

func flatten[E, T any](k kind, ps []*Parser[E, T]) []*Parser[E, T] {
	out := make([]*Parser[E, T], 0, len(ps))
	for _, p := range ps {
		if p.kind == k {
			out = append(out, p.parsers...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

func mergeExpected[E, T any](ps []*Parser[E, T], conjunction string) string {
	var b []byte
	for _, p := range ps {
		if p.expected == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, conjunction...)
		}
		b = append(b, p.expected...)
	}
	return string(b)
}

// quote renders a literal for failure descriptions.
func quote(s string) string { return strconv.Quote(s) }
