package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the children of node in source order, followed by a
// call of w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	switch n := node.(type) {
	case *LogicalLine:
		for _, raw := range n.Lines {
			Walk(v, raw)
		}
	case *InnerBlock:
		for _, c := range n.Children {
			Walk(v, c)
		}
	case *OuterBlock:
		for _, p := range n.Parts {
			Walk(v, p)
		}
	case *RawLine:
		// Leaf.
	}
	v.Visit(nil)
}

// Inspect traverses a tree in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Handler has one callback per node type. Unlike a [Visitor] it decides itself
// whether and in which order to descend, usually by calling [Accept] on the
// children it is handed, and returns a result for the node.
type Handler[R any] interface {
	RawLine(*RawLine) R
	LogicalLine(*LogicalLine) R
	InnerBlock(*InnerBlock) R
	OuterBlock(*OuterBlock) R
}

// Accept dispatches node to the matching callback of h.
func Accept[R any](node Node, h Handler[R]) R {
	switch n := node.(type) {
	case *RawLine:
		return h.RawLine(n)
	case *LogicalLine:
		return h.LogicalLine(n)
	case *InnerBlock:
		return h.InnerBlock(n)
	case *OuterBlock:
		return h.OuterBlock(n)
	}
	panic("ast: unknown node type")
}

// Collect gathers the values f returns for each logical line under node, in
// source order.
func Collect[T any](node Node, f func(*LogicalLine) []T) []T {
	return Accept[[]T](node, collector[T](f))
}

type collector[T any] func(*LogicalLine) []T

func (c collector[T]) RawLine(*RawLine) []T           { return nil }
func (c collector[T]) LogicalLine(l *LogicalLine) []T { return c(l) }

func (c collector[T]) InnerBlock(b *InnerBlock) []T {
	var out []T
	for _, child := range b.Children {
		out = append(out, Accept[[]T](child, c)...)
	}
	return out
}

func (c collector[T]) OuterBlock(b *OuterBlock) []T {
	var out []T
	for _, part := range b.Parts {
		out = append(out, Accept[[]T](part, c)...)
	}
	return out
}
