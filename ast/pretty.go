package ast

import (
	"io"
	"strconv"
	"strings"
)

// Plain writes the source text of node as it was read.
func Plain(w io.Writer, node Node) error {
	return printLines(w, node, func(p *linePrinter, dst []byte, l *RawLine) []byte {
		return append(dst, l.Original...)
	})
}

// Reconstruct writes node rebuilt from the margin, the tokens and the line ending
// of each line. Comment lines are written as read. The output equals the input of
// the classifier byte for byte.
func Reconstruct(w io.Writer, node Node) error {
	return printLines(w, node, func(p *linePrinter, dst []byte, l *RawLine) []byte {
		if l.Kind == Comment {
			return append(dst, l.Original...)
		}
		dst = append(dst, l.Margin...)
		for _, tok := range l.Tokens {
			dst = append(dst, tok.Text...)
		}
		return append(dst, l.EOL...)
	})
}

// Indent writes node with the code of each statement shifted right by width
// columns per enclosing block. Continuation lines get one extra level. Margins
// and comments are kept as read.
func Indent(w io.Writer, node Node, width int) error {
	return printLines(w, node, func(p *linePrinter, dst []byte, l *RawLine) []byte {
		code := strings.TrimLeft(l.Code, " \t")
		if l.Kind == Comment {
			return append(dst, l.Original...)
		} else if code == "" {
			dst = append(dst, l.Margin...)
			return append(dst, l.EOL...)
		}
		tab := 1 + p.level*width
		if l.Kind == Continuation {
			tab += width
		}
		dst = append(dst, l.Margin...)
		dst = appendSpaces(dst, tab)
		dst = append(dst, code...)
		return append(dst, l.EOL...)
	})
}

// Details writes one line per statement line, prefixed by one bar per enclosing
// block and by the statement kind and label. Comments are left out. style, if not
// nil, renders the statement tag.
func Details(w io.Writer, node Node, style func(tag string) string) error {
	return printLines(w, node, func(p *linePrinter, dst []byte, l *RawLine) []byte {
		var tag []byte
		switch l.Kind {
		case Comment:
			return dst
		case Continuation:
			dst = appendBars(dst, p.level+1)
			tag = append(tag, p.statement...)
			tag = append(tag, " continued"...)
		case Initial:
			dst = appendBars(dst, p.level)
			tag = append(tag, l.Statement...)
			if l.HasLabel {
				tag = append(tag, '[')
				tag = strconv.AppendUint(tag, uint64(l.Label), 10)
				tag = append(tag, ']')
			}
		}
		if style != nil {
			dst = append(dst, style(string(tag))...)
		} else {
			dst = append(dst, tag...)
		}
		dst = append(dst, ": "...)
		dst = append(dst, strings.TrimLeft(l.Code, " \t")...)
		return append(dst, '\n')
	})
}

func appendSpaces(dst []byte, n int) []byte {
	for range n {
		dst = append(dst, ' ')
	}
	return dst
}

func appendBars(dst []byte, n int) []byte {
	for range n {
		dst = append(dst, "||| "...)
	}
	return dst
}

func printLines(w io.Writer, node Node, line func(p *linePrinter, dst []byte, l *RawLine) []byte) error {
	return Accept[error](node, &linePrinter{w: w, line: line})
}

// linePrinter writes a tree line by line. It tracks the nesting level of inner
// blocks and the statement kind of the logical line being written.
type linePrinter struct {
	w         io.Writer
	line      func(p *linePrinter, dst []byte, l *RawLine) []byte
	buf       []byte
	level     int
	statement string
}

func (p *linePrinter) RawLine(l *RawLine) error {
	p.buf = p.line(p, p.buf[:0], l)
	if len(p.buf) == 0 {
		return nil
	}
	_, err := p.w.Write(p.buf)
	return err
}

func (p *linePrinter) LogicalLine(l *LogicalLine) error {
	p.statement = l.Statement
	for _, raw := range l.Lines {
		if err := p.RawLine(raw); err != nil {
			return err
		}
	}
	return nil
}

func (p *linePrinter) InnerBlock(b *InnerBlock) error {
	p.level++
	defer func() { p.level-- }()
	for _, c := range b.Children {
		if err := Accept[error](c, p); err != nil {
			return err
		}
	}
	return nil
}

func (p *linePrinter) OuterBlock(b *OuterBlock) error {
	for _, part := range b.Parts {
		if err := Accept[error](part, p); err != nil {
			return err
		}
	}
	return nil
}
