package symbol

import (
	"errors"
	"fmt"
	"strings"

	fixedform "github.com/soypat/go-fixedform"
	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/intrinsic"
	"github.com/soypat/go-fixedform/token"
)

// DeclarationCollector traverses a recovered source file and populates a
// SymbolTable with one scope per program unit.
type DeclarationCollector struct {
	table    *SymbolTable
	keywords map[string]bool
	errors   []error
	scope    *Scope           // unit being collected, nil outside units
	header   *ast.LogicalLine // header statement of the unit, if any
	exits    []bool           // whether leaving each visited node leaves a unit
}

// NewDeclarationCollector creates a new collector for building a symbol table.
func NewDeclarationCollector() *DeclarationCollector {
	return &DeclarationCollector{
		table:    NewSymbolTable(),
		keywords: keywordSet(),
	}
}

func keywordSet() map[string]bool {
	set := map[string]bool{"then": true}
	for _, s := range fixedform.Catalogue() {
		for _, w := range s.Words {
			set[w] = true
		}
		// Keywords written without blanks: GOTO, ENDIF, DOUBLEPRECISION.
		set[strings.Join(s.Words, "")] = true
	}
	return set
}

// Collect processes a tree returned by [fixedform.RecoverBlocks]. Errors
// encountered during collection are accumulated and returned joined.
func (dc *DeclarationCollector) Collect(tree *ast.OuterBlock) error {
	dc.errors = nil
	if tree == nil || tree.Kind != fixedform.KindSourceFile {
		return errors.New("symbol: tree is not a source file")
	}
	// Unit names are global: a unit may reference units defined after it.
	global := dc.table.GlobalScope()
	for _, part := range tree.Parts {
		unit, ok := part.(*ast.OuterBlock)
		if !ok {
			continue
		}
		if header := headerOf(unit); header != nil {
			if refs := names(header.Rest); len(refs) > 0 {
				sym := global.lookupOrDefine(refs[0].name, SymUnit)
				sym.addLine(header.Line())
			}
		}
	}
	ast.Walk(dc, tree)
	return errors.Join(dc.errors...)
}

// SymbolTable returns the populated table.
func (dc *DeclarationCollector) SymbolTable() *SymbolTable { return dc.table }

// Visit implements the ast.Visitor interface.
func (dc *DeclarationCollector) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		// Exiting a node - check if we need to exit a scope
		last := len(dc.exits) - 1
		if dc.exits[last] {
			dc.finishUnit()
		}
		dc.exits = dc.exits[:last]
		return nil
	}

	switch n := node.(type) {
	case *ast.OuterBlock:
		unit := dc.scope == nil && n.Kind != fixedform.KindSourceFile
		if unit {
			dc.enterUnit(n)
		}
		dc.exits = append(dc.exits, unit)
		return dc
	case *ast.InnerBlock:
		dc.exits = append(dc.exits, false)
		return dc
	case *ast.LogicalLine:
		if dc.scope != nil {
			dc.statement(n)
		}
	}
	return nil
}

func (dc *DeclarationCollector) addError(err error) {
	dc.errors = append(dc.errors, err)
}

// headerOf returns the header statement of a unit, nil for main programs
// without PROGRAM statement.
func headerOf(unit *ast.OuterBlock) *ast.LogicalLine {
	if len(unit.Parts) == 0 {
		return nil
	}
	l, _ := unit.Parts[0].(*ast.LogicalLine)
	return l
}

func (dc *DeclarationCollector) enterUnit(unit *ast.OuterBlock) {
	kind := strings.TrimSuffix(unit.Kind, "_block")
	dc.header = headerOf(unit)
	var refs []nameRef
	line := unit.Pos()
	if dc.header != nil {
		refs = names(dc.header.Rest)
		line = dc.header.Line()
		if len(refs) == 0 && kind != fixedform.KindBlockData {
			dc.addError(fmt.Errorf("line %d: %s statement names no unit", line, kind))
		}
	}
	name := ""
	if len(refs) > 0 {
		name = refs[0].name
		refs = refs[1:]
	}
	dc.scope = dc.table.EnterUnit(kind, name)
	dc.scope.line = line
	for _, ref := range refs {
		sym := NewSymbol(ref.name, SymParameter)
		if err := dc.scope.Define(sym); err != nil {
			dc.addError(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		sym.addLine(line)
		dc.scope.params = append(dc.scope.params, sym.name)
	}
}

// finishUnit types the names of the unit left untyped by type statements.
func (dc *DeclarationCollector) finishUnit() {
	for _, sym := range dc.scope.symbols {
		switch sym.kind {
		case SymUnknown, SymVariable, SymParameter:
			if sym.typ == "" {
				sym.SetType(dc.scope.implicit.TypeFor(sym.name), true)
			}
		}
	}
	dc.scope, dc.header = nil, nil
}

func (dc *DeclarationCollector) statement(l *ast.LogicalLine) {
	scope := dc.scope
	line := l.Line()
	if l.HasLabel && l.Statement != fixedform.KindFormat {
		scope.labels = append(scope.labels, l.Label)
	}
	if l == dc.header || l.Statement == fixedform.KindFormat {
		return
	}
	class, classified := fixedform.ClassOf(l.Statement)
	switch {
	case classified && class == fixedform.TopLevel:
		return
	case l.Statement == fixedform.KindImplicit:
		rules, err := ParseImplicit(l.Rest)
		if err != nil {
			dc.addError(fmt.Errorf("line %d: %w", line, err))
			return
		}
		for _, rule := range rules {
			scope.implicit.Apply(rule)
		}
		scope.rules = append(scope.rules, rules...)
		return
	case classified && class.IsSpecification():
		dc.declare(l, class)
		return
	}
	for i, ref := range names(l.Rest) {
		switch {
		case ref.keyword:
		case ref.called || (i == 0 && l.Statement == "call"):
			dc.call(ref.name, line)
		default:
			dc.reference(ref.name, line)
		}
	}
}

// declare defines the names of a specification statement. Names inside
// parentheses are array bounds or lengths and count as references, except in
// PARAMETER statements. Names between slashes name COMMON blocks.
func (dc *DeclarationCollector) declare(l *ast.LogicalLine, class fixedform.Class) {
	line := l.Line()
	var typ string
	if class == fixedform.Type {
		typ = strings.ReplaceAll(l.Statement, "_", " ")
	}
	kind := SymVariable
	switch l.Statement {
	case "external":
		kind = SymExternal
	case "intrinsic":
		kind = SymIntrinsic
	}
	for _, ref := range names(l.Rest) {
		switch {
		case ref.slashed:
		case ref.depth > 0 && l.Statement != "parameter":
			dc.reference(ref.name, line)
		default:
			sym := dc.scope.lookupOrDefine(ref.name, kind)
			if sym.kind == SymUnknown {
				sym.kind = kind
			}
			sym.flags = sym.flags.With(FlagDeclared, true)
			sym.addLine(line)
			if typ != "" {
				sym.SetType(typ, false)
			}
		}
	}
}

func (dc *DeclarationCollector) reference(name string, line int) {
	scope := dc.scope
	sym := scope.LookupLocal(name)
	if sym == nil {
		if dc.keywords[name] {
			return
		}
		kind := SymUnknown
		if scope.parent.LookupLocal(name) != nil {
			kind = SymUnit
		} else if intrinsic.Is(name) {
			kind = SymIntrinsic
		}
		sym = scope.lookupOrDefine(name, kind)
	}
	sym.flags = sym.flags.With(FlagUsed, true)
	sym.addLine(line)
}

func (dc *DeclarationCollector) call(name string, line int) {
	kind := SymExternal
	if dc.scope.parent.LookupLocal(name) != nil {
		kind = SymUnit
	}
	sym := dc.scope.lookupOrDefine(name, kind)
	if sym.kind == SymUnknown {
		sym.kind = kind
	}
	sym.flags = sym.flags.With(FlagUsed|FlagCalled, true)
	sym.addLine(line)
}

// nameRef is an occurrence of a name in the tokens of a statement.
type nameRef struct {
	name    string // lower case
	depth   int    // parenthesis depth
	slashed bool   // between slashes outside parentheses, as COMMON block names
	keyword bool   // followed by = inside parentheses, as UNIT= in I/O control lists
	called  bool   // follows CALL
}

func names(toks []token.Token) []nameRef {
	sig := token.Significant(toks)
	var refs []nameRef
	depth, slashed := 0, false
	for i, t := range sig {
		switch t.Tag {
		case token.LParen:
			depth++
		case token.RParen:
			depth = max(depth-1, 0)
		case token.Slash:
			if depth == 0 {
				slashed = !slashed
			}
		case token.Name:
			refs = append(refs, nameRef{
				name:    normalizeCase(t.Text),
				depth:   depth,
				slashed: slashed,
				keyword: depth > 0 && i+1 < len(sig) && sig[i+1].Tag == token.Equals,
				called:  i > 0 && sig[i-1].Is("call"),
			})
		}
	}
	return refs
}
