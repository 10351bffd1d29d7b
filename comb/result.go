package comb

import (
	"strconv"
)

// Result is the outcome of scanning input with a [Parser]. A successful Result
// covers the input range [Start, End) and holds the produced Value. A failed
// Result holds the position it failed at and a description of what was expected
// there. A failure never holds a value.
type Result[T any] struct {
	Start int
	End   int
	Value T
	// Expected describes what the parser expected at Start on failure.
	Expected string
	// Committed is set on failures that consumed input inside a [Commit] parser.
	// Choices and repetitions do not recover from committed failures.
	Committed bool
	// Err is set on fatal failures created by [Abort]. Fatal failures propagate
	// through every combinator untouched.
	Err error
	ok  bool
}

// Success returns a successful result that consumed [start, end).
func Success[T any](start, end int, value T) Result[T] {
	if end < start {
		panic("comb: success ends before start")
	}
	return Result[T]{Start: start, End: end, Value: value, ok: true}
}

// Failure returns a failed result at start.
func Failure[T any](start int, expected string) Result[T] {
	return Result[T]{Start: start, End: start, Expected: expected}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool { return r.ok }

// Fatal reports whether the result is a failure created by [Abort].
func (r Result[T]) Fatal() bool { return !r.ok && r.Err != nil }

// recoverable reports whether a choice or repetition may discard this failure.
func (r Result[T]) recoverable() bool {
	return !r.ok && !r.Committed && r.Err == nil
}

// fail converts a failed result of one value type to another, keeping its position,
// description and flags.
func fail[U, T any](r Result[T]) Result[U] {
	return Result[U]{Start: r.Start, End: r.Start, Expected: r.Expected, Committed: r.Committed, Err: r.Err}
}

// Describe renders a failure as "expected X at L:C" against the scanned input.
func Describe[E, T any](in []E, r Result[T]) string {
	if r.ok {
		return "value from " + Location(in, r.Start) + " to " + Location(in, r.End)
	}
	if r.Err != nil {
		return r.Err.Error() + " at " + Location(in, r.Start)
	}
	return "expected " + r.Expected + " at " + Location(in, r.Start)
}

// Location renders pos for diagnostics. Text input (runes or bytes) is rendered as a
// 1-based line:column pair, any other input as the 1-based ordinal of the element.
func Location[E any](in []E, pos int) string {
	switch text := any(in).(type) {
	case []rune:
		return lineCol(len(text), pos, func(i int) bool { return text[i] == '\n' })
	case []byte:
		return lineCol(len(text), pos, func(i int) bool { return text[i] == '\n' })
	}
	return strconv.Itoa(pos + 1)
}

func lineCol(n, pos int, isNewline func(int) bool) string {
	if pos > n {
		pos = n
	}
	line, col := 1, 1
	for i := 0; i < pos; i++ {
		if isNewline(i) {
			line++
			col = 1
		} else {
			col++
		}
	}
	b := strconv.AppendInt(nil, int64(line), 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(col), 10)
	return string(b)
}
