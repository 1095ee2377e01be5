// Package groupby implements the GroupBy operator: a sorted-input
// aggregation scan that emits one output row per contiguous run of equal
// group-by keys.
package groupby

import (
	"math"
	"strconv"
	"strings"

	"github.com/qlever-io/qlever-core"
)

// VocabResolver resolves the persistent- and local-vocabulary payloads an
// Id may carry back to their lexical string form. Numeric coercion and
// GROUP_CONCAT consult it lazily, only for columns whose values are
// vocabulary references — small integers and floats never need it.
type VocabResolver interface {
	ResolveVocabIndex(idx uint64) string
	ResolveLocalVocabIndex(idx uint64) string
}

// LexicalForm renders id as a string: the numeric/boolean literal form for
// scalar datatypes, or the resolved vocabulary entry for vocabulary
// references. Used by GROUP_CONCAT and by ToFloat's vocabulary fallback.
func LexicalForm(id qlever.Id, resolver VocabResolver) string {
	switch id.Datatype() {
	case qlever.DatatypeVocabIndex:
		if resolver == nil {
			return ""
		}
		return resolver.ResolveVocabIndex(id.VocabIndex())
	case qlever.DatatypeLocalVocabIndex:
		if resolver == nil {
			return ""
		}
		return resolver.ResolveLocalVocabIndex(id.LocalVocabIndex())
	default:
		return id.String()
	}
}

// ToFloat coerces id to a float64 for SUM/AVG/MIN/MAX. Small-integer and
// float Ids convert directly; booleans yield 1 or 0; vocabulary entries
// parse their lexical form's numeric prefix; every other datatype (text
// records, UNDEFINED, or an unparseable vocabulary entry) yields NaN, following the
// "text/string types yield NaN" rule rather than failing the aggregate.
func ToFloat(id qlever.Id, resolver VocabResolver) float64 {
	switch id.Datatype() {
	case qlever.DatatypeInt:
		return float64(id.Int())
	case qlever.DatatypeDouble:
		return id.Double()
	case qlever.DatatypeBool:
		if id.Bool() {
			return 1
		}
		return 0
	case qlever.DatatypeVocabIndex, qlever.DatatypeLocalVocabIndex:
		return parseNumericPrefix(LexicalForm(id, resolver))
	default:
		return math.NaN()
	}
}

// parseNumericPrefix parses the leading numeric run of s (after stripping
// surrounding quotes, as a Turtle-quoted literal would carry), returning
// NaN if no numeric prefix is present.
func parseNumericPrefix(s string) float64 {
	s = strings.Trim(s, `"`)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	end, seenDigit, seenDot := 0, false, false
loop:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '+' || r == '-') && i == 0:
			// sign only valid as the very first rune
		default:
			break loop
		}
		end = i + 1
	}
	if !seenDigit {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// numericLess compares a and b for MIN/MAX. When both coerce to a
// non-NaN float, comparison is by value. Otherwise, if both share the
// same Datatype the raw Id order is used (matching how vocabulary indices
// order lexically). Mixed incomparable types return comparable=false, the
// signal to yield UNDEFINED per the type-aware comparison rule.
func numericLess(a, b qlever.Id, resolver VocabResolver) (less bool, comparable bool) {
	af, bf := ToFloat(a, resolver), ToFloat(b, resolver)
	if !math.IsNaN(af) && !math.IsNaN(bf) {
		return af < bf, true
	}
	if a.Datatype() == b.Datatype() {
		return a.Compare(b) < 0, true
	}
	return false, false
}
