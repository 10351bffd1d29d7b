package ast

import (
	"errors"
	"strings"
	"testing"
)

func sprint(t *testing.T, print func(*strings.Builder) error) string {
	t.Helper()
	var b strings.Builder
	if err := print(&b); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestPlainAndReconstruct(t *testing.T) {
	tree := testTree()
	plain := sprint(t, func(b *strings.Builder) error { return Plain(b, tree) })
	if plain != testSource {
		t.Errorf("plain:\n%s", plain)
	}
	rebuilt := sprint(t, func(b *strings.Builder) error { return Reconstruct(b, tree) })
	if rebuilt != testSource {
		t.Errorf("reconstruct:\n%s", rebuilt)
	}
}

func TestIndent(t *testing.T) {
	sp := func(n int) string { return strings.Repeat(" ", n) }
	want := sp(7) + "PROGRAM P\n" +
		"C     note\n" +
		"10    " + sp(3) + "X = 1\n" +
		sp(6+3) + "IF (X.GT.0) THEN\n" +
		sp(6+5) + "Y = 1\n" +
		"     +" + sp(7) + "+ 2\n" +
		sp(6+3) + "END IF\n" +
		sp(7) + "END\n"
	got := sprint(t, func(b *strings.Builder) error { return Indent(b, testTree(), 2) })
	if got != want {
		t.Errorf("indent:\n%s\nwant:\n%s", got, want)
	}
}

func TestIndentEmptyCode(t *testing.T) {
	l := initialLine(1, "   10", "", "assignment")
	got := sprint(t, func(b *strings.Builder) error { return Indent(b, l, 4) })
	if got != "   10\n" {
		t.Errorf("got %q", got)
	}
}

func TestDetails(t *testing.T) {
	want := `program: PROGRAM P
||| assignment[10]: X = 1
||| if: IF (X.GT.0) THEN
||| ||| assignment: Y = 1
||| ||| ||| assignment continued: + 2
||| end_if: END IF
end: END
`
	got := sprint(t, func(b *strings.Builder) error { return Details(b, testTree(), nil) })
	if got != want {
		t.Errorf("details:\n%s\nwant:\n%s", got, want)
	}
	styled := sprint(t, func(b *strings.Builder) error {
		return Details(b, testTree(), func(tag string) string { return "<" + tag + ">" })
	})
	if !strings.HasPrefix(styled, "<program>: PROGRAM P\n||| <assignment[10]>: X = 1\n") {
		t.Errorf("styled details:\n%s", styled)
	}
}

type failWriter struct{ n int }

var errWrite = errors.New("write failed")

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errWrite
	}
	w.n--
	return len(p), nil
}

func TestPrinterWriteError(t *testing.T) {
	err := Plain(&failWriter{n: 3}, testTree())
	if !errors.Is(err, errWrite) {
		t.Errorf("expected write error, got %v", err)
	}
}
