package symbol

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/go-fixedform/ast"
	"github.com/soypat/go-fixedform/intrinsic"
	"gopkg.in/yaml.v3"
)

// MaxSuggestions bounds the intrinsic names suggested for an unaccounted name.
const MaxSuggestions = 3

// Report summarizes the program units of a source file.
type Report struct {
	Units []UnitReport `yaml:"units"`
}

// UnitReport describes one program unit.
type UnitReport struct {
	Kind        string         `yaml:"kind"`
	Name        string         `yaml:"name,omitempty"`
	Line        int            `yaml:"line"`
	Params      []string       `yaml:"params,omitempty,flow"`
	Labels      []uint32       `yaml:"labels,omitempty,flow"`
	Implicit    []ImplicitRule `yaml:"implicit,omitempty"`
	Locals      []string       `yaml:"locals,omitempty,flow"`
	Calls       []string       `yaml:"calls,omitempty,flow"`
	Unaccounted []Unaccounted  `yaml:"unaccounted,omitempty"`
	Usage       []Usage        `yaml:"usage,omitempty"`
}

// Unaccounted is a name used by a unit that is neither declared, a formal
// parameter, a program unit of the file, an intrinsic function nor a keyword.
type Unaccounted struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type,omitempty"` // implicit type
	Lines       []int    `yaml:"lines,flow"`
	Suggestions []string `yaml:"suggestions,omitempty,flow"`
}

// Usage lists the physical lines of the statements naming a symbol.
type Usage struct {
	Name  string `yaml:"name"`
	Lines []int  `yaml:"lines,flow"`
}

// Analyze collects the names of the units of tree, as returned by
// [fixedform.RecoverBlocks], and reports them.
func Analyze(tree *ast.OuterBlock) (*Report, error) {
	dc := NewDeclarationCollector()
	if err := dc.Collect(tree); err != nil {
		return nil, err
	}
	return NewReport(dc.SymbolTable()), nil
}

// NewReport builds the report of a populated table.
func NewReport(table *SymbolTable) *Report {
	r := &Report{Units: []UnitReport{}}
	for _, scope := range table.GlobalScope().Children() {
		u := UnitReport{
			Kind:     scope.Kind(),
			Name:     scope.Name(),
			Line:     scope.Line(),
			Params:   scope.Params(),
			Labels:   scope.Labels(),
			Implicit: scope.ImplicitStatements(),
		}
		for _, sym := range scope.Symbols() {
			if sym.flags.HasAny(FlagDeclared) {
				u.Locals = append(u.Locals, sym.name)
			}
			if sym.flags.HasAny(FlagCalled) {
				u.Calls = append(u.Calls, sym.name)
			}
			if sym.kind == SymUnknown {
				u.Unaccounted = append(u.Unaccounted, Unaccounted{
					Name:        sym.name,
					Type:        sym.typ,
					Lines:       sym.lines,
					Suggestions: intrinsic.Suggest(sym.name, MaxSuggestions),
				})
			}
			if sym.flags.HasAny(FlagUsed) {
				u.Usage = append(u.Usage, Usage{Name: sym.name, Lines: sym.lines})
			}
		}
		r.Units = append(r.Units, u)
	}
	return r
}

// UnitNames returns the names of the units in source order. Unnamed units are
// left out.
func (r *Report) UnitNames() []string {
	var names []string
	for _, u := range r.Units {
		if u.Name != "" {
			names = append(names, u.Name)
		}
	}
	return names
}

// WriteYAML writes the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText writes the report for reading in a terminal.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "units: %s\n", strings.Join(r.UnitNames(), ", "))
	for _, u := range r.Units {
		b.WriteByte('\n')
		name := u.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "%s %s", u.Kind, name)
		if len(u.Params) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(u.Params, ", "))
		}
		fmt.Fprintf(&b, " at line %d\n", u.Line)
		if len(u.Labels) > 0 {
			labels := make([]string, len(u.Labels))
			for i, l := range u.Labels {
				labels[i] = strconv.FormatUint(uint64(l), 10)
			}
			fmt.Fprintf(&b, "  labels: %s\n", strings.Join(labels, ", "))
		}
		if len(u.Implicit) > 0 {
			rules := make([]string, len(u.Implicit))
			for i, rule := range u.Implicit {
				rules[i] = rule.String()
			}
			fmt.Fprintf(&b, "  implicit: %s\n", strings.Join(rules, ", "))
		}
		if len(u.Locals) > 0 {
			fmt.Fprintf(&b, "  locals: %s\n", strings.Join(u.Locals, ", "))
		}
		if len(u.Calls) > 0 {
			fmt.Fprintf(&b, "  calls: %s\n", strings.Join(u.Calls, ", "))
		}
		for _, n := range u.Unaccounted {
			fmt.Fprintf(&b, "  unaccounted: %s", n.Name)
			if n.Type != "" {
				fmt.Fprintf(&b, " %s", n.Type)
			}
			fmt.Fprintf(&b, " on lines %s", joinInts(n.Lines))
			if len(n.Suggestions) > 0 {
				fmt.Fprintf(&b, ", did you mean %s?", strings.Join(n.Suggestions, " or "))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinInts(ns []int) string {
	s := make([]string, len(ns))
	for i, n := range ns {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}
