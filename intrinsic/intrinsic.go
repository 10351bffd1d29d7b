// Package intrinsic catalogues the intrinsic functions of FORTRAN 77 so that
// names used in a program can be told apart from variables.
package intrinsic

import (
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Result types of intrinsic functions.
const (
	Generic         = ""                 // result has the type of the arguments
	Integer         = "integer"
	Real            = "real"
	DoublePrecision = "double precision"
	Complex         = "complex"
	Logical         = "logical"
	Character       = "character"
)

// Function is an intrinsic function.
type Function struct {
	Name   string // lower case
	Result string // Generic for generic functions
}

var functions = []Function{
	{"abs", Generic}, {"acos", Generic}, {"aimag", Real}, {"aint", Generic}, {"alog", Real},
	{"alog10", Real}, {"amax0", Real}, {"amax1", Real}, {"amin0", Real}, {"amin1", Real},
	{"amod", Real}, {"anint", Generic}, {"asin", Generic}, {"atan", Generic}, {"atan2", Generic},
	{"cabs", Real}, {"ccos", Complex}, {"cexp", Complex}, {"char", Character}, {"clog", Complex},
	{"cmplx", Complex}, {"conjg", Complex}, {"cos", Generic}, {"cosh", Generic}, {"csin", Complex},
	{"csqrt", Complex}, {"dabs", DoublePrecision}, {"dacos", DoublePrecision}, {"dasin", DoublePrecision},
	{"datan", DoublePrecision}, {"datan2", DoublePrecision}, {"dble", DoublePrecision},
	{"dcos", DoublePrecision}, {"dcosh", DoublePrecision}, {"ddim", DoublePrecision},
	{"dexp", DoublePrecision}, {"dim", Generic}, {"dint", DoublePrecision}, {"dlog", DoublePrecision},
	{"dlog10", DoublePrecision}, {"dmax1", DoublePrecision}, {"dmin1", DoublePrecision},
	{"dmod", DoublePrecision}, {"dnint", DoublePrecision}, {"dprod", DoublePrecision},
	{"dreal", DoublePrecision}, {"dsign", DoublePrecision}, {"dsin", DoublePrecision},
	{"dsinh", DoublePrecision}, {"dsqrt", DoublePrecision}, {"dtan", DoublePrecision},
	{"dtanh", DoublePrecision}, {"exp", Generic}, {"float", Real}, {"iabs", Integer},
	{"ichar", Integer}, {"idim", Integer}, {"idint", Integer}, {"idnint", Integer}, {"ifix", Integer},
	{"index", Integer}, {"int", Integer}, {"isign", Integer}, {"len", Integer}, {"lge", Logical},
	{"lgt", Logical}, {"lle", Logical}, {"llt", Logical}, {"log", Generic}, {"log10", Generic},
	{"max", Generic}, {"max0", Integer}, {"max1", Integer}, {"min", Generic}, {"min0", Integer},
	{"min1", Integer}, {"mod", Generic}, {"nint", Integer}, {"real", Real}, {"sign", Generic},
	{"sin", Generic}, {"sinh", Generic}, {"sngl", Real}, {"sqrt", Generic}, {"tan", Generic},
	{"tanh", Generic},
}

var names = func() []string {
	s := make([]string, len(functions))
	for i, f := range functions {
		s[i] = f.Name
	}
	return s
}()

// Names returns the names of all intrinsic functions in alphabetical order.
func Names() []string { return slices.Clone(names) }

// Lookup returns the intrinsic function called name, ignoring case.
func Lookup(name string) (Function, bool) {
	i, found := slices.BinarySearch(names, strings.ToLower(name))
	if !found {
		return Function{}, false
	}
	return functions[i], true
}

// Is reports whether name is the name of an intrinsic function.
func Is(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Suggest returns at most n intrinsic names close to name, best first: names
// holding its letters in order and names a single edit away.
func Suggest(name string, n int) []string {
	name = strings.ToLower(name)
	if name == "" || n <= 0 {
		return nil
	}
	ranks := fuzzy.RankFindFold(name, names)
	for i, target := range names {
		if d := fuzzy.LevenshteinDistance(name, target); d == 1 && !fuzzy.MatchFold(name, target) {
			ranks = append(ranks, fuzzy.Rank{Source: name, Target: target, Distance: d, OriginalIndex: i})
		}
	}
	sort.Stable(ranks)
	var out []string
	for _, r := range ranks {
		if r.Target == name {
			continue
		}
		out = append(out, r.Target)
		if len(out) == n {
			break
		}
	}
	return out
}
