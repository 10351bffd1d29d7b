// Package symbol collects the names used by the program units of a recovered
// fixed-form source file and reports the ones no declaration accounts for.
package symbol

import (
	"fmt"
	"slices"
	"strings"
)

// Flags
type Flags uint64

const (
	FlagImplicit Flags = 1 << iota // type comes from the implicit rules
	FlagUsed                       // referenced by an executable or DATA statement
	FlagCalled                     // named by a CALL statement
	FlagDeclared                   // named by a specification statement
)

func (f Flags) HasAny(hasBits Flags) bool { return f&hasBits != 0 }
func (f Flags) With(mask Flags, setBits bool) Flags {
	if setBits {
		return f | mask
	} else {
		return f &^ mask
	}
}

// Symbol is a name known to a scope.
type Symbol struct {
	name  string // lower case
	typ   string // "integer", "double precision", ... or "" when unknown
	kind  SymbolKind
	lines []int // physical lines of the statements naming the symbol
	scope *Scope
	flags Flags
}

// NewSymbol creates a new symbol with the given name and kind
func NewSymbol(name string, kind SymbolKind) *Symbol {
	return &Symbol{name: normalizeCase(name), kind: kind}
}

// Name returns the symbol name, lower case.
func (s *Symbol) Name() string { return s.name }

// Type returns the declared or implicit type, empty when unknown.
func (s *Symbol) Type() string { return s.typ }

// Kind returns the symbol kind
func (s *Symbol) Kind() SymbolKind { return s.kind }

// Lines returns the physical lines of the statements naming the symbol, in order.
func (s *Symbol) Lines() []int { return s.lines }

// Scope returns the scope where this symbol is defined
func (s *Symbol) Scope() *Scope { return s.scope }

// Flags returns the symbol [Flags].
func (s *Symbol) Flags() Flags { return s.flags }

// SetType sets the type of the symbol. implicit tells whether it comes from the
// implicit typing rules.
func (s *Symbol) SetType(typ string, implicit bool) {
	s.typ = typ
	s.flags = s.flags.With(FlagImplicit, implicit)
}

// addLine records a reference at line, once per line.
func (s *Symbol) addLine(line int) {
	if n := len(s.lines); n == 0 || s.lines[n-1] != line {
		s.lines = append(s.lines, line)
	}
}

// SymbolKind classifies what kind of entity a symbol represents
type SymbolKind int

const (
	SymUnknown   SymbolKind = iota // used but never declared
	SymVariable                    // named by a specification statement
	SymParameter                   // formal parameter of the unit
	SymUnit                        // program unit of the file
	SymIntrinsic                   // intrinsic function
	SymExternal                    // procedure named by CALL or EXTERNAL
)

// String returns the string representation of SymbolKind
func (sk SymbolKind) String() string {
	switch sk {
	case SymUnknown:
		return "Unknown"
	case SymVariable:
		return "Variable"
	case SymParameter:
		return "Parameter"
	case SymUnit:
		return "Unit"
	case SymIntrinsic:
		return "Intrinsic"
	case SymExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// Scope represents a program unit's names, or the file's unit names for the
// global scope.
type Scope struct {
	parent   *Scope
	children []*Scope
	symbols  map[string]*Symbol
	implicit ImplicitRules
	kind     string // statement kind of the unit header, "program" for main programs
	name     string
	line     int // header line, or first line of a main program without header
	params   []string
	labels   []uint32
	rules    []ImplicitRule
}

// Parent returns the parent scope (nil for global scope)
func (s *Scope) Parent() *Scope { return s.parent }

// Children returns child scopes
func (s *Scope) Children() []*Scope { return s.children }

// Kind returns the header statement kind of the unit, "program" for a main
// program without PROGRAM statement. It is empty for the global scope.
func (s *Scope) Kind() string { return s.kind }

// Name returns the unit name, lower case.
func (s *Scope) Name() string { return s.name }

// Line returns the line of the unit header, or the first line of a main program
// without PROGRAM statement.
func (s *Scope) Line() int { return s.line }

// Params returns the formal parameters of the unit in order.
func (s *Scope) Params() []string { return s.params }

// Labels returns the statement labels of the unit in source order, FORMAT
// labels excluded.
func (s *Scope) Labels() []uint32 { return s.labels }

// ImplicitStatements returns the rules of the IMPLICIT statements of the unit in
// source order.
func (s *Scope) ImplicitStatements() []ImplicitRule { return s.rules }

// Implicit returns the implicit typing rules for this scope
func (s *Scope) Implicit() *ImplicitRules { return &s.implicit }

// Lookup searches for a symbol in this scope and parent scopes
func (s *Scope) Lookup(name string) *Symbol {
	name = normalizeCase(name) // Fortran is case-insensitive
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal searches for a symbol only in this scope (not parent scopes)
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[normalizeCase(name)]
}

// Symbols returns the symbols of the scope sorted by name.
func (s *Scope) Symbols() []*Symbol {
	syms := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		syms = append(syms, sym)
	}
	slices.SortFunc(syms, func(a, b *Symbol) int { return strings.Compare(a.name, b.name) })
	return syms
}

// Define adds a symbol to this scope
func (s *Scope) Define(sym *Symbol) error {
	if _, ok := s.symbols[sym.name]; ok {
		return fmt.Errorf("symbol %s already defined in scope", sym.name)
	}
	sym.scope = s
	s.symbols[sym.name] = sym
	return nil
}

// lookupOrDefine returns the local symbol called name, defining it with kind
// when it does not exist yet.
func (s *Scope) lookupOrDefine(name string, kind SymbolKind) *Symbol {
	if sym := s.LookupLocal(name); sym != nil {
		return sym
	}
	sym := NewSymbol(name, kind)
	s.Define(sym) // Cannot fail: the name is not defined.
	return sym
}

// SymbolTable is the root of the symbol table hierarchy
type SymbolTable struct {
	globalScope *Scope
}

// NewSymbolTable creates a new symbol table with global scope
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{globalScope: newScope(nil, "", "")}
}

// GlobalScope returns the global scope
func (st *SymbolTable) GlobalScope() *Scope { return st.globalScope }

// EnterUnit creates the scope of a program unit as child of the global scope.
func (st *SymbolTable) EnterUnit(kind, name string) *Scope {
	scope := newScope(st.globalScope, kind, name)
	st.globalScope.children = append(st.globalScope.children, scope)
	return scope
}

func newScope(parent *Scope, kind, name string) *Scope {
	return &Scope{
		parent:   parent,
		symbols:  make(map[string]*Symbol),
		implicit: DefaultImplicitRules(),
		kind:     kind,
		name:     normalizeCase(name),
	}
}

// normalizeCase converts a Fortran identifier to normalized form (lower case)
func normalizeCase(name string) string {
	return strings.ToLower(name)
}
