package fixedform

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/token"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		line      string
		kind      ast.LineKind
		statement string
		label     uint32
		hasLabel  bool
		code      string
		cont      rune
	}{
		0:  {line: "\n", kind: ast.Comment},
		1:  {line: "      \n", kind: ast.Comment},
		2:  {line: "C     COMMENT\n", kind: ast.Comment},
		3:  {line: "c\n", kind: ast.Comment},
		4:  {line: "* STARS\n", kind: ast.Comment},
		5:  {line: "   ! BANG\n", kind: ast.Comment},
		6:  {line: "      IF (X.GT.0) THEN\n", kind: ast.Initial, statement: "if", code: "IF (X.GT.0) THEN"},
		7:  {line: "      ENDIF\n", kind: ast.Initial, statement: "end_if", code: "ENDIF"},
		8:  {line: "      END IF\n", kind: ast.Initial, statement: "end_if", code: "END IF"},
		9:  {line: "      END\n", kind: ast.Initial, statement: "end", code: "END"},
		10: {line: "     0X = 1\n", kind: ast.Initial, statement: "assignment", code: "X = 1"},
		11: {line: "     +  Y\n", kind: ast.Continuation, code: "  Y", cont: '+'},
		12: {line: "   10 CONTINUE\n", kind: ast.Initial, statement: "continue", label: 10, hasLabel: true, code: "CONTINUE"},
		13: {line: "99999 FORMAT (I5)\r\n", kind: ast.Initial, statement: "format", label: 99999, hasLabel: true, code: "FORMAT (I5)"},
		14: {line: "      DOUBLE PRECISION X\n", kind: ast.Initial, statement: "double_precision", code: "DOUBLE PRECISION X"},
		15: {line: "      DO 10 I = 1, 5\n", kind: ast.Initial, statement: "do", code: "DO 10 I = 1, 5"},
		16: {line: "      GOTO 10\n", kind: ast.Initial, statement: "go_to", code: "GOTO 10"},
		17: {line: "      INTEGER FUNCTION F(X)\n", kind: ast.Initial, statement: "function", code: "INTEGER FUNCTION F(X)"},
		18: {line: "      DOUBLE PRECISION FUNCTION F(X)\n", kind: ast.Initial, statement: "function", code: "DOUBLE PRECISION FUNCTION F(X)"},
		19: {line: "      END BLOCK DATA", kind: ast.Initial, statement: "end_block_data", code: "END BLOCK DATA"},
		20: {line: "      DOSE = 1\n", kind: ast.Initial, statement: "assignment", code: "DOSE = 1"},
		21: {line: "      DO10I=1,5\n", kind: ast.Initial, statement: "do", code: "DO10I=1,5"},
		22: {line: "      DO10I=1.5\n", kind: ast.Initial, statement: "assignment", code: "DO10I=1.5"},
		23: {line: "      A(I,J) = B(1,2)\n", kind: ast.Initial, statement: "assignment", code: "A(I,J) = B(1,2)"},
		24: {line: "      ENDFILE 6\n", kind: ast.Initial, statement: "endfile", code: "ENDFILE 6"},
		25: {line: "   10\n", kind: ast.Initial, statement: "assignment", label: 10, hasLabel: true},
		26: {line: "      x = 'it''s' ! trailing\n", kind: ast.Initial, statement: "assignment", code: "x = 'it''s' ! trailing"},
		27: {line: "      WRITE (6,*) 'Gr\xf6\xdfe'\n", kind: ast.Initial, statement: "write", code: "WRITE (6,*) 'Gr\xf6\xdfe'"},
		28: {line: "      S = 'Größe'\n", kind: ast.Initial, statement: "assignment", code: "S = 'Größe'"},
		29: {line: "     \xa7 'Stra\xdfe'\n", kind: ast.Continuation, code: " 'Stra\xdfe'", cont: 0xfffd},
	}
	for i, c := range cases {
		raw, err := Classify(i+1, c.line)
		if err != nil {
			t.Errorf("case %d: %v", i, err)
			continue
		}
		if raw.Kind != c.kind {
			t.Errorf("case %d %q: kind %s, want %s", i, c.line, raw.Kind, c.kind)
		}
		if raw.Statement != c.statement {
			t.Errorf("case %d %q: statement %q, want %q", i, c.line, raw.Statement, c.statement)
		}
		if raw.Label != c.label || raw.HasLabel != c.hasLabel {
			t.Errorf("case %d %q: label %d/%t, want %d/%t", i, c.line, raw.Label, raw.HasLabel, c.label, c.hasLabel)
		}
		if raw.Code != c.code {
			t.Errorf("case %d %q: code %q, want %q", i, c.line, raw.Code, c.code)
		}
		if raw.Cont != c.cont {
			t.Errorf("case %d %q: continuation marker %q, want %q", i, c.line, raw.Cont, c.cont)
		}
		if raw.Original != c.line || raw.Line != i+1 {
			t.Errorf("case %d: original %q at %d", i, raw.Original, raw.Line)
		}
		if raw.Kind != ast.Comment && token.Text(raw.Tokens) != raw.Code {
			t.Errorf("case %d: tokens spell %q, want %q", i, token.Text(raw.Tokens), raw.Code)
		}
	}
}

func TestClassifyRest(t *testing.T) {
	raw, err := Classify(1, "      SUBROUTINE FOO(A, B)\n")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tok := range token.Significant(raw.Rest) {
		if tok.Tag == token.Name {
			names = append(names, tok.Text)
		}
	}
	if !slices.Equal(names, []string{"FOO", "A", "B"}) {
		t.Errorf("names after keywords: %v", names)
	}
	raw, err = Classify(2, "      X = Y\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(raw.Rest) != len(raw.Tokens) {
		t.Error("assignments keep all tokens in Rest")
	}
	raw, err = Classify(3, "      PRINT *, '\xc4rger'\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := token.Text(raw.Rest); got != " *, '\xc4rger'" {
		t.Errorf("rest spells %q", got)
	}
	if raw.Margin != "      " {
		t.Errorf("margin %q", raw.Margin)
	}
}

func TestClassifyErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		0: {line: "   1 +  X\n", want: ErrMalformedContinuation},
		1: {line: "1A    X = 1\n", want: ErrMalformedLabel},
		2: {line: " 1 2  X = 1\n", want: ErrMalformedLabel},
		3: {line: "\tX=1\n", want: ErrMalformedLabel},
	}
	for i, c := range cases {
		_, err := Classify(1, c.line)
		if !errors.Is(err, c.want) {
			t.Errorf("case %d %q: got %v, want %v", i, c.line, err, c.want)
		}
	}
}

func TestCatalogueOrder(t *testing.T) {
	cat := Catalogue()
	index := func(kind string, words ...string) int {
		return slices.IndexFunc(cat, func(s Statement) bool {
			return s.Kind == kind && slices.Equal(s.Words, words)
		})
	}
	before := [][2]int{
		{index("double_precision", "double", "precision"), index("do", "do")},
		{index("function", "double", "precision", "function"), index("double_precision", "double", "precision")},
		{index("function", "integer", "function"), index("integer", "integer")},
		{index("end_if", "end", "if"), index("end", "end")},
		{index("end_do", "end", "do"), index("end", "end")},
		{index("end_program", "end", "program"), index("end", "end")},
		{index("else_if", "else", "if"), index("else", "else")},
		{index("endfile", "endfile"), index("end", "end")},
	}
	for i, pair := range before {
		if pair[0] < 0 || pair[1] < 0 || pair[0] >= pair[1] {
			t.Errorf("pair %d out of order: %d, %d", i, pair[0], pair[1])
		}
	}
	// No entry is shadowed by an earlier entry spelling a prefix of it.
	for i, s := range cat {
		for _, prev := range cat[:i] {
			if len(prev.key()) < len(s.key()) && strings.HasPrefix(s.key(), prev.key()) {
				t.Errorf("%v shadowed by %v", s.Words, prev.Words)
			}
		}
	}
	if cat[len(cat)-1].Kind != KindEnd {
		t.Errorf("bare END must come last, got %v", cat[len(cat)-1].Words)
	}
}

func TestClasses(t *testing.T) {
	if got := Classes(ControlBlock); !slices.Equal(got, []string{"if", "else_if", "else", "end_if", "do", "end_do"}) {
		t.Errorf("control block: %v", got)
	}
	if got := Classes(Type); !slices.Contains(got, "double_precision") || slices.Contains(got, "function") {
		t.Errorf("type: %v", got)
	}
	c, ok := ClassOf("function")
	if !ok || c != TopLevel {
		t.Errorf("function class %v", c)
	}
	if _, ok := ClassOf(KindAssignment); ok {
		t.Error("assignment has no class")
	}
	if !IO.IsExecutable() || Type.IsExecutable() || !Type.IsSpecification() || ControlBlock.IsNonBlock() {
		t.Error("class predicates broken")
	}
	if !slices.Contains(Keywords(), "precision") {
		t.Error("missing keyword")
	}
}

func mustParse(t *testing.T, src string, opts Options) *File {
	t.Helper()
	f, err := Parse("test.f", strings.NewReader(src), opts)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestAssembleLogicalLines(t *testing.T) {
	const src = "C lead\n" +
		"      X = 1 +\n" +
		"     1    2\n" +
		"C inside\n" +
		"     2    + 3\n" +
		"   10 Y = X\n"
	raw, err := ClassifyLines("test.f", mustLines(t, src))
	if err != nil {
		t.Fatal(err)
	}
	lls, err := AssembleLogicalLines("test.f", raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(lls) != 2 {
		t.Fatalf("got %d statements", len(lls))
	}
	first := lls[0]
	if len(first.Lines) != 5 || first.Line() != 2 || first.Pos() != 1 {
		t.Errorf("first statement: %d lines, initial at %d, starts at %d", len(first.Lines), first.Line(), first.Pos())
	}
	if first.Code != "X = 1 +\n    2\n    + 3" {
		t.Errorf("merged code %q", first.Code)
	}
	if got := token.Text(first.Tokens); got != "X = 1 +    2    + 3" {
		t.Errorf("merged tokens %q", got)
	}
	if !lls[1].HasLabel || lls[1].Label != 10 || lls[1].Statement != KindAssignment {
		t.Errorf("second statement %+v", lls[1])
	}
}

func mustLines(t *testing.T, src string) []string {
	t.Helper()
	lines, err := ReadLines(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return lines
}

func TestAssembleErrors(t *testing.T) {
	cases := []struct {
		src   string
		line  int
		found string
	}{
		0: {src: "     +  X\n      END\n", line: 1, found: "continuation line"},
		1: {src: "C only\nC comments\n", line: 2, found: "end of input"},
	}
	for i, c := range cases {
		raw, err := ClassifyLines("test.f", mustLines(t, c.src))
		if err != nil {
			t.Fatal(err)
		}
		_, err = AssembleLogicalLines("test.f", raw)
		var pe *ParseError
		if !errors.As(err, &pe) || !errors.Is(err, ErrStructure) {
			t.Fatalf("case %d: got %v", i, err)
		}
		if pe.Line() != c.line || pe.Found != c.found || pe.Stage != StageAssemble || pe.Expected != "initial" {
			t.Errorf("case %d: got %v at line %d", i, pe, pe.Line())
		}
	}
}

func TestIfBlockScenario(t *testing.T) {
	f := mustParse(t, "      IF (X.GT.0) THEN\n      Y = 1\n      END IF\n      END\n", Options{})
	if f.Tree.Kind != KindSourceFile || len(f.Tree.Parts) != 1 {
		t.Fatalf("tree %+v", f.Tree)
	}
	program := f.Tree.Parts[0].(*ast.OuterBlock)
	if program.Kind != "program_block" || len(program.Parts) != 2 {
		t.Fatalf("program %+v", program)
	}
	body := program.Parts[0].(*ast.InnerBlock)
	if len(body.Children) != 1 {
		t.Fatalf("body %+v", body)
	}
	ifBlock := body.Children[0].(*ast.OuterBlock)
	if ifBlock.Kind != KindIfBlock || len(ifBlock.Parts) != 3 {
		t.Fatalf("if block %+v", ifBlock)
	}
	section := ifBlock.Parts[1].(*ast.InnerBlock)
	if len(section.Children) != 1 || section.Children[0].(*ast.LogicalLine).Statement != KindAssignment {
		t.Errorf("section %+v", section)
	}
	if ifBlock.Parts[2].(*ast.LogicalLine).Statement != KindEndIf {
		t.Error("if block must end with end_if")
	}
}

func TestOldStyleDoIsLeaf(t *testing.T) {
	src := "      DO 10 I = 1, 5\n" +
		"      X = X + I\n" +
		"   10 CONTINUE\n" +
		"      END\n"
	f := mustParse(t, src, Options{})
	body := f.Tree.Parts[0].(*ast.OuterBlock).Parts[0].(*ast.InnerBlock)
	if len(body.Children) != 3 {
		t.Fatalf("got %d children", len(body.Children))
	}
	for i, want := range []string{KindDo, KindAssignment, "continue"} {
		l, ok := body.Children[i].(*ast.LogicalLine)
		if !ok || l.Statement != want {
			t.Errorf("child %d: got %#v, want %s leaf", i, body.Children[i], want)
		}
	}
}

func TestIfSections(t *testing.T) {
	src := "      IF (A) THEN\n" +
		"      ELSE IF (B) THEN\n" +
		"      X = 1\n" +
		"      ELSE\n" +
		"      IF (C) X = 2\n" +
		"      END IF\n" +
		"      END\n"
	f := mustParse(t, src, Options{})
	ifBlock := f.Tree.Parts[0].(*ast.OuterBlock).Parts[0].(*ast.InnerBlock).Children[0].(*ast.OuterBlock)
	var kinds []string
	for _, p := range ifBlock.Parts {
		kinds = append(kinds, string(p.AppendTokenLiteral(nil)))
	}
	want := []string{"if", "else_if", "inner_block", "else", "inner_block", "end_if"}
	if !slices.Equal(kinds, want) {
		t.Errorf("parts %v, want %v", kinds, want)
	}
}

func TestMaxDepth(t *testing.T) {
	var b strings.Builder
	const depth = 5
	for range depth {
		b.WriteString("      DO I = 1, 2\n")
	}
	for range depth {
		b.WriteString("      END DO\n")
	}
	b.WriteString("      END\n")
	src := b.String()

	mustParse(t, src, Options{MaxDepth: depth})
	_, err := Parse("deep.f", strings.NewReader(src), Options{MaxDepth: depth - 1})
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected max depth error, got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line() != depth || pe.Found != KindDo {
		t.Errorf("got %v", err)
	}
}

func TestParseErrorFormat(t *testing.T) {
	_, err := Parse("s.f", strings.NewReader("      SUBROUTINE S\n      DO I = 1, 2\n      END\n"), Options{})
	if err == nil || err.Error() != "s.f:3: expected end_do, found end" {
		t.Errorf("got %v", err)
	}
	if !errors.Is(err, ErrStructure) {
		t.Error("structure errors wrap ErrStructure")
	}
	_, err = Parse("e.f", strings.NewReader(""), Options{})
	if err == nil || err.Error() != "e.f:1: expected program unit, found end of input" {
		t.Errorf("got %v", err)
	}
	if _, err = Parse("", strings.NewReader(""), Options{}); err == nil {
		t.Error("expected error for missing source name")
	}
}

func TestParseLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mustParse(t, "      DO I = 1, 2\n      END DO\n      END\n", Options{Logger: logger})
	out := buf.String()
	for _, want := range []string{"kind=do_block", "kind=program_block", "component=recoverer", "source=test.f", "units=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\r\nb\n\nc"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(lines, []string{"a\r\n", "b\n", "\n", "c"}) {
		t.Errorf("got %q", lines)
	}
	if _, err := ReadLines(nil); err == nil {
		t.Error("expected error for nil reader")
	}
}

func TestRemoveBlanks(t *testing.T) {
	src := "      X = 1\n\n   \n\n      Y = 2\n\n      END\n"
	raw, err := ClassifyLines("b.f", mustLines(t, src))
	if err != nil {
		t.Fatal(err)
	}
	want := "      X = 1\n\n      Y = 2\n\n      END\n"
	if got := RemoveBlanks(raw); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewComments(t *testing.T) {
	src := "C upper\nc lower\n* star\n      X = 1\n   ! kept\n      END\n"
	raw, err := ClassifyLines("c.f", mustLines(t, src))
	if err != nil {
		t.Fatal(err)
	}
	want := "! upper\n! lower\n! star\n      X = 1\n   ! kept\n      END\n"
	if got := NewComments(raw); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
