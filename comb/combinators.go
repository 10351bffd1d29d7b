package comb

import (
	"sync"
)

// Unbounded is the maximum passed to [Between] for repetitions without an upper limit.
const Unbounded = -1

// Between applies p greedily at most max times (no limit if max is [Unbounded]) and
// succeeds with the collected values once at least min applications succeeded.
// A failed attempt after min is reached ends the repetition without error unless the
// failure is committed or fatal. Before min is reached the failure propagates.
//
// An application that succeeds without consuming input ends an unbounded repetition
// after its value is recorded.
func Between[E, T any](p *Parser[E, T], min, max int) *Parser[E, []T] {
	return FromFunc(p.expected, func(in []E, pos int) Result[[]T] {
		values := []T{}
		cur := pos
		for max < 0 || len(values) < max {
			r := p.Scan(in, cur)
			if !r.OK() {
				if len(values) >= min && r.recoverable() {
					break
				}
				return fail[[]T](r)
			}
			values = append(values, r.Value)
			if r.End == cur && max < 0 {
				if len(values) >= min {
					break
				}
				continue
			}
			cur = r.End
		}
		return Success(pos, cur, values)
	})
}

// Times matches p exactly n times.
func Times[E, T any](p *Parser[E, T], n int) *Parser[E, []T] { return Between(p, n, n) }

// Optional matches p zero or one time.
func Optional[E, T any](p *Parser[E, T]) *Parser[E, []T] { return Between(p, 0, 1) }

// Many matches p zero or more times.
func Many[E, T any](p *Parser[E, T]) *Parser[E, []T] { return Between(p, 0, Unbounded) }

// AtLeastOnce matches p one or more times.
func AtLeastOnce[E, T any](p *Parser[E, T]) *Parser[E, []T] { return Between(p, 1, Unbounded) }

// ManyTill applies p until end matches and returns the values of p. Unlike [Many],
// a failure of p is returned as is, so the caller sees why the input was rejected
// instead of a complaint about end.
func ManyTill[E, T, U any](p *Parser[E, T], end *Parser[E, U]) *Parser[E, []T] {
	return FromFunc(p.expected, func(in []E, pos int) Result[[]T] {
		values := []T{}
		cur := pos
		for {
			re := end.Scan(in, cur)
			if re.OK() {
				return Success(pos, re.End, values)
			} else if !re.recoverable() {
				return fail[[]T](re)
			}
			r := p.Scan(in, cur)
			if !r.OK() {
				return fail[[]T](r)
			} else if r.End == cur {
				return fail[[]T](re)
			}
			values = append(values, r.Value)
			cur = r.End
		}
	})
}

// Map transforms the value of a successful p with f.
func Map[E, T, U any](p *Parser[E, T], f func(T) U) *Parser[E, U] {
	return FromFunc(p.expected, func(in []E, pos int) Result[U] {
		r := p.Scan(in, pos)
		if !r.OK() {
			return fail[U](r)
		}
		return Success(r.Start, r.End, f(r.Value))
	})
}

// Singleton wraps the value of p in a one element list, ready for [Concat].
func Singleton[E, T any](p *Parser[E, T]) *Parser[E, []T] {
	return Map(p, func(v T) []T { return []T{v} })
}

// Left applies p then q and keeps the value of p.
func Left[E, T, U any](p *Parser[E, T], q *Parser[E, U]) *Parser[E, T] {
	return FromFunc(joinExpected(p.expected, q.expected), func(in []E, pos int) Result[T] {
		rp := p.Scan(in, pos)
		if !rp.OK() {
			return rp
		}
		rq := q.Scan(in, rp.End)
		if !rq.OK() {
			return fail[T](rq)
		}
		return Success(pos, rq.End, rp.Value)
	})
}

// Right applies p then q and keeps the value of q.
func Right[E, T, U any](p *Parser[E, T], q *Parser[E, U]) *Parser[E, U] {
	return FromFunc(joinExpected(p.expected, q.expected), func(in []E, pos int) Result[U] {
		rp := p.Scan(in, pos)
		if !rp.OK() {
			return fail[U](rp)
		}
		rq := q.Scan(in, rp.End)
		if !rq.OK() {
			return rq
		}
		return Success(pos, rq.End, rq.Value)
	})
}

func joinExpected(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " followed by " + b
}

// Succeed always succeeds with v without consuming input.
func Succeed[E, T any](v T) *Parser[E, T] {
	return FromFunc("", func(in []E, pos int) Result[T] {
		return Success(pos, pos, v)
	})
}

// Fail always fails with expected without consuming input.
func Fail[E, T any](expected string) *Parser[E, T] {
	return FromFunc(expected, func(in []E, pos int) Result[T] {
		return Failure[T](pos, expected)
	})
}

// Abort always fails fatally with err. Fatal failures are never recovered from by
// choices or repetitions.
func Abort[E, T any](err error) *Parser[E, T] {
	return FromFunc(err.Error(), func(in []E, pos int) Result[T] {
		return Result[T]{Start: pos, End: pos, Expected: err.Error(), Err: err}
	})
}

// EOF succeeds without consuming input only at the end of the input.
func EOF[E any]() *Parser[E, struct{}] {
	const expected = "end of input"
	return FromFunc(expected, func(in []E, pos int) Result[struct{}] {
		if pos >= len(in) {
			return Success(pos, pos, struct{}{})
		}
		return Failure[struct{}](pos, expected)
	})
}

// Commit marks failures of p that happened past its start position as committed.
// Enclosing choices and repetitions will not try alternatives after such a failure.
func Commit[E, T any](p *Parser[E, T]) *Parser[E, T] {
	return FromFunc(p.expected, func(in []E, pos int) Result[T] {
		r := p.Scan(in, pos)
		if !r.OK() && r.Err == nil && r.Start != pos {
			r.Committed = true
		}
		return r
	})
}

// Not succeeds without consuming input when p fails, and fails with expected when
// p succeeds.
func Not[E, T any](p *Parser[E, T], expected string) *Parser[E, struct{}] {
	return FromFunc(expected, func(in []E, pos int) Result[struct{}] {
		r := p.Scan(in, pos)
		if r.OK() {
			return Failure[struct{}](pos, expected)
		} else if r.Fatal() {
			return fail[struct{}](r)
		}
		return Success(pos, pos, struct{}{})
	})
}

// Lazy defers building a parser until it is first scanned, which lets grammars
// refer to themselves.
func Lazy[E, T any](expected string, build func() *Parser[E, T]) *Parser[E, T] {
	get := sync.OnceValue(build)
	return FromFunc(expected, func(in []E, pos int) Result[T] {
		return get().Scan(in, pos)
	})
}

// Satisfy matches a single element for which pred returns true.
func Satisfy[E any](pred func(E) bool, expected string) *Parser[E, E] {
	return FromFunc(expected, func(in []E, pos int) Result[E] {
		if pos < len(in) && pred(in[pos]) {
			return Success(pos, pos+1, in[pos])
		}
		return Failure[E](pos, expected)
	})
}

// Any matches any single element.
func Any[E any]() *Parser[E, E] {
	return Satisfy(func(E) bool { return true }, "anything")
}

// Matches reports whether p succeeds on in at pos.
func Matches[E, T any](p *Parser[E, T], in []E, pos int) bool {
	return p.Scan(in, pos).OK()
}
