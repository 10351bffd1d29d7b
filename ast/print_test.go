package ast

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, initialLine(3, "10    ", "X = 1", "assignment"), nil)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	output := buf.String()
	expected := []string{
		"RawLine",
		"Kind: initial",
		`Original: "10    X = 1\n"`,
		`Margin: "10    "`,
		"Line: 3",
		`0: "name{X}"`,
		"Cont: '\\x00'",
	}
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("Output missing expected string %q\nGot:\n%s", exp, output)
		}
	}
}

func TestPrintWithFilter(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, commentLine(1, "C"), NotNilFilter)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	output := buf.String()
	if strings.Contains(output, "Tokens") || strings.Contains(output, "HasLabel") {
		t.Errorf("Expected nil and false fields to be filtered out, but got:\n%s", output)
	}
	if !strings.Contains(output, `Original: "C\n"`) {
		t.Errorf("Expected Original to appear, but got:\n%s", output)
	}
}

func TestPrintStructure(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, testTree(), StructureFilter); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	for _, exp := range []string{`Kind: "source_file"`, `Kind: "if_block"`, `Statement: "end_if"`, "Children: ast.Block (len=2)"} {
		if !strings.Contains(output, exp) {
			t.Errorf("Output missing %q\nGot:\n%s", exp, output)
		}
	}
	for _, unexpected := range []string{"Original", "Tokens", "Lines"} {
		if strings.Contains(output, unexpected) {
			t.Errorf("Output should not contain %q", unexpected)
		}
	}
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, nil, nil)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	if output := buf.String(); output != "nil" {
		t.Errorf("Expected 'nil', got %q", output)
	}
}
