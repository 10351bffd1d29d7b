package fixedform

import (
	"errors"
	"strconv"
)

var (
	// ErrMalformedContinuation is returned for continuation lines with a
	// statement label.
	ErrMalformedContinuation = errors.New("malformed continuation line")
	// ErrMalformedLabel is returned when columns 1 to 5 of an initial line hold
	// anything but a statement label.
	ErrMalformedLabel = errors.New("malformed statement label")
	// ErrStructure is returned when statements do not nest into blocks, for
	// instance an END DO without a block DO.
	ErrStructure = errors.New("unbalanced block structure")
	// ErrMaxDepth is returned when blocks nest deeper than [Options.MaxDepth].
	ErrMaxDepth = errors.New("maximum block nesting depth exceeded")
)

// Stage names the step that rejected the input.
type Stage uint8

const (
	StageClassify Stage = iota // classifying physical lines
	StageAssemble              // grouping lines into statements
	StageRecover               // recovering blocks from statements
)

func (s Stage) String() string {
	switch s {
	case StageClassify:
		return "classify"
	case StageAssemble:
		return "assemble"
	case StageRecover:
		return "recover"
	}
	return "Stage(" + strconv.Itoa(int(s)) + ")"
}

// ParseError reports where and why a file was rejected. It wraps one of the
// package's sentinel errors.
type ParseError struct {
	sp    sourcePos
	Stage Stage
	// Expected and Found describe a rejected line, for instance "end_do" and
	// "end_if". Both are empty for errors detected within a single line.
	Expected string
	Found    string
	Err      error
}

// Source returns the name of the rejected source.
func (pe *ParseError) Source() string { return pe.sp.Source }

// Line returns the 1-based number of the offending physical line.
func (pe *ParseError) Line() int { return pe.sp.Line }

func (pe *ParseError) Error() string {
	var dst []byte
	dst = pe.sp.AppendString(dst)
	dst = append(dst, ':', ' ')
	switch {
	case pe.Expected != "":
		dst = append(dst, "expected "...)
		dst = append(dst, pe.Expected...)
		dst = append(dst, ", found "...)
		dst = append(dst, pe.Found...)
	case pe.Err != nil:
		dst = append(dst, pe.Err.Error()...)
	}
	return string(dst)
}

func (pe *ParseError) Unwrap() error { return pe.Err }

type sourcePos struct {
	Source string
	Line   int
}

func (l *sourcePos) String() string {
	return string(l.AppendString(nil))
}

func (l *sourcePos) AppendString(b []byte) []byte {
	if b == nil {
		b = make([]byte, 0, len(l.Source)+1+3)
	}
	b = append(b, l.Source...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(l.Line), 10)
	return b
}
