package ast

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/soypat/go-fixedform/token"
)

// A FieldFilter is used to filter fields when printing nodes.
// If it returns false, the field is excluded from the output.
type FieldFilter func(name string, value reflect.Value) bool

// NotNilFilter returns true for all fields that are not nil or zero-value.
// This is useful for excluding nil slices and false bools from the output.
func NotNilFilter(_ string, v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return !v.IsNil()
	case reflect.Bool:
		return v.Bool()
	}
	return true
}

// StructureFilter keeps only the fields that make up the shape of a tree: block
// kinds, their parts and children, and statement kinds. Two trees print the same
// under StructureFilter when they were recovered from the same block structure.
func StructureFilter(name string, v reflect.Value) bool {
	switch name {
	case "Kind", "Parts", "Children", "Statement":
		return true
	}
	return false
}

// Fprint prints the node x to w in an indented tree format.
// If a non-nil FieldFilter f is provided, only fields for which f returns true are printed.
// Fprint is useful for debugging and testing.
func Fprint(w io.Writer, x any, f FieldFilter) error {
	p := &printer{
		output: w,
		filter: f,
		ptrmap: make(map[any]int),
	}
	p.print(reflect.ValueOf(x))
	return p.err
}

// Print calls Fprint(os.Stdout, x, NotNilFilter) for debugging convenience.
func Print(x any) error {
	return Fprint(os.Stdout, x, NotNilFilter)
}

var tokenType = reflect.TypeFor[token.Token]()

type printer struct {
	output io.Writer
	filter FieldFilter
	ptrmap map[any]int
	indent int
	err    error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.output, format, args...)
}

func (p *printer) print(v reflect.Value) {
	if !v.IsValid() {
		p.printf("nil")
		return
	}
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			p.printf("nil")
			return
		}
		ptr := v.Interface()
		if line, exists := p.ptrmap[ptr]; exists {
			p.printf("(obj @ %d)", line)
			return
		}
		p.ptrmap[ptr] = len(p.ptrmap)
		v = v.Elem()
	}

	t := v.Type()
	if t == tokenType {
		p.printf("%q", v.Interface().(token.Token).String())
		return
	}
	if t == reflect.TypeFor[LineKind]() {
		p.printf("%s", v.Interface().(LineKind))
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		p.printf("%s {", t.Name())
		if v.NumField() > 0 {
			p.printf("\n")
			p.indent++
			for i := 0; i < v.NumField(); i++ {
				field := t.Field(i)
				fv := v.Field(i)
				if !field.IsExported() {
					continue
				}
				if p.filter != nil && !p.filter(field.Name, fv) {
					continue
				}
				p.printIndent()
				p.printf("%s: ", field.Name)
				p.print(fv)
				p.printf("\n")
			}
			p.indent--
			p.printIndent()
		}
		p.printf("}")

	case reflect.Slice:
		if v.IsNil() {
			p.printf("nil")
			return
		}
		p.printf("%s (len=%d) [", t.Elem().String(), v.Len())
		if v.Len() > 0 {
			p.printf("\n")
			p.indent++
			for i := 0; i < v.Len(); i++ {
				p.printIndent()
				p.printf("%d: ", i)
				p.print(v.Index(i))
				p.printf("\n")
			}
			p.indent--
			p.printIndent()
		}
		p.printf("]")

	case reflect.String:
		p.printf("%q", v.String())

	case reflect.Int32:
		// Runes.
		p.printf("%q", rune(v.Int()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		p.printf("%d", v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		p.printf("%d", v.Uint())

	case reflect.Bool:
		p.printf("%t", v.Bool())

	default:
		p.printf("%v", v.Interface())
	}
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.printf("  ")
	}
}
