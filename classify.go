package fixedform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/comb"
	"github.com/soypat/go-fixedform/token"
)

var (
	// A line is a comment when it is blank, when column 1 holds C or *, or when
	// its first non-blank character is !.
	commentMarker = comb.Choice(
		comb.Map(comb.EOF[rune](), func(struct{}) string { return "" }),
		comb.Char(comb.OneOf("cC*")),
		comb.Right(comb.Whitespace, comb.Exact("!")),
	)
	labelField = comb.Left(comb.Liberal(comb.Text(comb.Between(comb.Digit, 1, labelWidth))), comb.EOF[rune]())
)

// Classify classifies the physical line numbered lineno. line may end with its
// line ending, which is kept apart from the code.
func Classify(lineno int, line string) (*ast.RawLine, error) {
	body, eol := splitEOL(line)
	raw := &ast.RawLine{Line: lineno, Original: line, EOL: eol}
	if comb.Matches(commentMarker, []rune(strings.TrimRight(body, " \t\r")), 0) {
		raw.Kind = ast.Comment
		return raw, nil
	}
	runes := []rune(body)
	margin := min(marginColumn, len(runes))
	split := token.RuneOffset(body, margin)
	raw.Margin = body[:split]
	raw.Code = body[split:]
	raw.Tokens = token.Tokenize(raw.Code)
	raw.Rest = raw.Tokens
	label := runes[:min(labelWidth, len(runes))]

	if len(runes) > continuationColumn && !strings.ContainsRune(" 0", runes[continuationColumn]) {
		if strings.TrimSpace(string(label)) != "" {
			return nil, fmt.Errorf("%w: label field %q on a continuation line", ErrMalformedContinuation, string(label))
		}
		raw.Kind = ast.Continuation
		raw.Cont = runes[continuationColumn]
		return raw, nil
	}

	raw.Kind = ast.Initial
	if strings.TrimSpace(string(label)) != "" {
		digits, err := labelField.Parse(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLabel, string(label))
		}
		n, err := strconv.ParseUint(digits, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLabel, err)
		}
		raw.Label, raw.HasLabel = uint32(n), true
	}
	code := runes[margin:]
	kind, end := matchStatement(code, raw.Tokens)
	raw.Statement = kind
	if end > 0 {
		raw.Rest = token.Tokenize(raw.Code[token.RuneOffset(raw.Code, end):])
	}
	return raw, nil
}

// ClassifyLines classifies the lines of a file, numbering them from 1.
func ClassifyLines(source string, lines []string) ([]*ast.RawLine, error) {
	raw := make([]*ast.RawLine, len(lines))
	for i, line := range lines {
		l, err := Classify(i+1, line)
		if err != nil {
			return nil, &ParseError{sp: sourcePos{Source: source, Line: i + 1}, Stage: StageClassify, Err: err}
		}
		raw[i] = l
	}
	return raw, nil
}

func splitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
