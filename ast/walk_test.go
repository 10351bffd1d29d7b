package ast

import (
	"slices"
	"testing"

	"github.com/soypat/go-fixedform/token"
)

func initialLine(n int, margin, code, statement string) *RawLine {
	l := &RawLine{
		Kind:      Initial,
		Line:      n,
		Original:  margin + code + "\n",
		Margin:    margin,
		Code:      code,
		EOL:       "\n",
		Tokens:    token.Tokenize(code),
		Statement: statement,
	}
	l.Rest = l.Tokens
	return l
}

func continuationLine(n int, margin, code string) *RawLine {
	l := initialLine(n, margin, code, "")
	l.Kind = Continuation
	l.Cont = []rune(margin)[5]
	return l
}

func commentLine(n int, text string) *RawLine {
	return &RawLine{Kind: Comment, Line: n, Original: text + "\n"}
}

func logical(lines ...*RawLine) *LogicalLine {
	ll := &LogicalLine{Lines: lines}
	for _, l := range lines {
		if l.Kind == Initial {
			ll.Statement = l.Statement
			ll.Label, ll.HasLabel = l.Label, l.HasLabel
		}
		if l.Kind != Comment {
			ll.Tokens = append(ll.Tokens, l.Tokens...)
		}
	}
	return ll
}

// testTree builds the tree of
//
//	      PROGRAM P
//	C     note
//	10    X = 1
//	      IF (X.GT.0) THEN
//	      Y = 1
//	     +  + 2
//	      END IF
//	      END
func testTree() *OuterBlock {
	assignX := initialLine(3, "10    ", "X = 1", "assignment")
	assignX.Label, assignX.HasLabel = 10, true
	ifBlock := &OuterBlock{
		Kind: "if_block",
		Parts: []Block{
			logical(initialLine(4, "      ", "IF (X.GT.0) THEN", "if")),
			&InnerBlock{Children: []Block{
				logical(initialLine(5, "      ", "Y = 1", "assignment"), continuationLine(6, "     +", "  + 2")),
			}},
			logical(initialLine(7, "      ", "END IF", "end_if")),
		},
	}
	program := &OuterBlock{
		Kind: "program_block",
		Parts: []Block{
			logical(initialLine(1, "      ", "PROGRAM P", "program")),
			&InnerBlock{Children: []Block{
				logical(commentLine(2, "C     note"), assignX),
				ifBlock,
			}},
			logical(initialLine(8, "      ", "END", "end")),
		},
	}
	return &OuterBlock{Kind: "source_file", Parts: []Block{program}}
}

const testSource = `      PROGRAM P
C     note
10    X = 1
      IF (X.GT.0) THEN
      Y = 1
     +  + 2
      END IF
      END
`

// countVisitor counts how many times Visit is called
type countVisitor struct {
	count int
	nils  int
}

func (v *countVisitor) Visit(node Node) Visitor {
	if node != nil {
		v.count++
	} else {
		v.nils++
	}
	return v
}

func TestWalk(t *testing.T) {
	v := &countVisitor{}
	Walk(v, testTree())
	// 5 blocks, 6 logical lines and 8 raw lines.
	if v.count != 19 {
		t.Errorf("expected 19 visits, got %d", v.count)
	}
	if v.nils != v.count {
		t.Errorf("expected one exit per node, got %d exits for %d nodes", v.nils, v.count)
	}
}

func TestWalkLeaf(t *testing.T) {
	v := &countVisitor{}
	Walk(v, commentLine(1, "*"))
	if v.count != 1 {
		t.Errorf("expected 1 visit, got %d", v.count)
	}
}

func TestInspectOrder(t *testing.T) {
	var got []string
	Inspect(testTree(), func(n Node) bool {
		if l, ok := n.(*LogicalLine); ok {
			got = append(got, l.Statement)
			return false
		}
		return n != nil
	})
	want := []string{"program", "assignment", "if", "assignment", "end_if", "end"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInspectPrune(t *testing.T) {
	var blocks int
	Inspect(testTree(), func(n Node) bool {
		switch n := n.(type) {
		case *OuterBlock:
			blocks++
			return n.Kind != "if_block"
		case *InnerBlock:
			blocks++
		}
		return n != nil
	})
	// The if block is visited but not entered: its inner block is skipped.
	if blocks != 4 {
		t.Errorf("expected 4 blocks, got %d", blocks)
	}
}

func TestCollect(t *testing.T) {
	tree := testTree()
	labels := Collect(tree, func(l *LogicalLine) []uint32 {
		if l.HasLabel {
			return []uint32{l.Label}
		}
		return nil
	})
	if !slices.Equal(labels, []uint32{10}) {
		t.Errorf("labels: got %v", labels)
	}
	lines := Collect(tree, func(l *LogicalLine) []int { return []int{l.Line()} })
	if !slices.Equal(lines, []int{1, 3, 4, 5, 7, 8}) {
		t.Errorf("lines: got %v", lines)
	}
}

func TestPositions(t *testing.T) {
	tree := testTree()
	if tree.Pos() != 1 || tree.End() != 9 {
		t.Errorf("source spans [%d,%d), want [1,9)", tree.Pos(), tree.End())
	}
	program := tree.Parts[0].(*OuterBlock)
	body := program.Parts[1].(*InnerBlock)
	if body.Pos() != 2 || body.End() != 8 {
		t.Errorf("body spans [%d,%d), want [2,8)", body.Pos(), body.End())
	}
	empty := &InnerBlock{}
	if empty.Pos() != 0 || empty.End() != 0 {
		t.Error("empty block must have no position")
	}
	stmt := body.Children[0].(*LogicalLine)
	if stmt.Pos() != 2 || stmt.Line() != 3 {
		t.Errorf("statement starts at %d with initial line %d, want 2 and 3", stmt.Pos(), stmt.Line())
	}
	if got := string(stmt.AppendTokenLiteral(nil)); got != "assignment" {
		t.Errorf("token literal %q", got)
	}
	if got := string(tree.AppendString(nil)); got != testSource {
		t.Errorf("AppendString:\n%s", got)
	}
}
