package qlever

import (
	"fmt"
	"math"
)

// Datatype tags the payload carried by an Id. The tag scheme is opaque to
// operators: everything above this file treats Id as an
// indivisible bitwise-comparable 64-bit value. Only id.go, and the numeric
// coercion in the groupby package, know the bit layout.
type Datatype uint8

const (
	// DatatypeUndefined is the zero value so a zeroed Id is UNDEFINED,
	// matching encvalue.go's convention that a zero header means "nothing
	// written here yet".
	DatatypeUndefined Datatype = iota
	DatatypeVocabIndex
	DatatypeLocalVocabIndex
	DatatypeInt
	DatatypeDouble
	DatatypeBool
	DatatypeTextRecordIndex
)

func (dt Datatype) String() string {
	switch dt {
	case DatatypeUndefined:
		return "Undefined"
	case DatatypeVocabIndex:
		return "VocabIndex"
	case DatatypeLocalVocabIndex:
		return "LocalVocabIndex"
	case DatatypeInt:
		return "Int"
	case DatatypeDouble:
		return "Double"
	case DatatypeBool:
		return "Bool"
	case DatatypeTextRecordIndex:
		return "TextRecordIndex"
	default:
		return fmt.Sprintf("Datatype(%d)", uint8(dt))
	}
}

const (
	idTagBits     = 4
	idTagShift    = 64 - idTagBits
	idPayloadMask = (uint64(1) << idTagShift) - 1
)

// Id is a 64-bit tagged value: a vocabulary index, a local-vocab index, a
// small integer, a float, a text-record index, or UNDEFINED. Equality is
// bitwise.
type Id uint64

// Undefined is the sentinel Id every AlwaysDefined-column check rejects.
var Undefined = Id(0)

func makeId(dt Datatype, payload uint64) Id {
	if payload&^idPayloadMask != 0 {
		panic(fmt.Errorf("qlever: payload %#x overflows %d-bit Id field", payload, idTagShift))
	}
	return Id(uint64(dt)<<idTagShift | payload)
}

func (id Id) Datatype() Datatype {
	return Datatype(uint64(id) >> idTagShift)
}

func (id Id) payload() uint64 {
	return uint64(id) & idPayloadMask
}

// IsUndefined reports whether id is the UNDEFINED sentinel.
func (id Id) IsUndefined() bool {
	return id == Undefined
}

// Raw exposes the bitwise 64-bit representation, used only for
// serialization (cache entries, the mutation log) — never for value
// comparison, which must go through Compare or the datatype-specific
// accessors.
func (id Id) Raw() uint64 { return uint64(id) }

// FromRaw reconstructs an Id from a previously-serialized Raw() value.
func FromRaw(u uint64) Id { return Id(u) }

// FromVocabIndex builds an Id referring to entry idx of the persistent
// vocabulary.
func FromVocabIndex(idx uint64) Id { return makeId(DatatypeVocabIndex, idx) }

// FromLocalVocabIndex builds an Id referring to entry idx of a
// query-scoped LocalVocab.
func FromLocalVocabIndex(idx uint64) Id { return makeId(DatatypeLocalVocabIndex, idx) }

// FromTextRecordIndex builds an Id referring to a text record.
func FromTextRecordIndex(idx uint64) Id { return makeId(DatatypeTextRecordIndex, idx) }

// FromInt builds a small-integer Id. Values must fit in idTagShift-1 bits
// of two's complement (the sign occupies the top payload bit); values that
// don't should be stored in the vocabulary instead, exactly as the source
// engine limits its "small integer" fast path.
func FromInt(v int64) Id {
	const signBit = uint64(1) << (idTagShift - 1)
	u := uint64(v) & idPayloadMask
	if v < 0 {
		u |= signBit
	}
	return makeId(DatatypeInt, u)
}

// Int returns the integer payload, valid only when Datatype() == DatatypeInt.
func (id Id) Int() int64 {
	const signBit = uint64(1) << (idTagShift - 1)
	u := id.payload()
	if u&signBit != 0 {
		// sign-extend into the full 64 bits
		return int64(u | ^idPayloadMask)
	}
	return int64(u)
}

// FromDouble builds a float Id. The tag occupies the top idTagBits, so the
// float's bit pattern is shifted right by that many bits to fit the
// payload — sign and exponent live in the surviving high bits, and only
// the bottom idTagBits of the mantissa are lost, the same trick
// kvo.ScalarConverter uses for its float scalar conversion.
func FromDouble(v float64) Id {
	bits := math.Float64bits(v)
	return makeId(DatatypeDouble, bits>>idTagBits)
}

// Double returns the float payload, valid only when Datatype() == DatatypeDouble.
// Because the bottom idTagBits of the mantissa were shifted out by
// FromDouble, this is a lossy but deterministic and order-preserving
// narrowing — a documented approximation for the "low bits" encoding.
func (id Id) Double() float64 {
	return math.Float64frombits(id.payload() << idTagBits)
}

// VocabIndex returns the persistent-vocabulary index, valid only when
// Datatype() == DatatypeVocabIndex.
func (id Id) VocabIndex() uint64 { return id.payload() }

// LocalVocabIndex returns the query-scoped vocabulary index, valid only
// when Datatype() == DatatypeLocalVocabIndex.
func (id Id) LocalVocabIndex() uint64 { return id.payload() }

// TextRecordIndex returns the text-record index, valid only when
// Datatype() == DatatypeTextRecordIndex.
func (id Id) TextRecordIndex() uint64 { return id.payload() }

// FromBool builds a boolean Id.
func FromBool(v bool) Id {
	if v {
		return makeId(DatatypeBool, 1)
	}
	return makeId(DatatypeBool, 0)
}

// Bool returns the boolean payload, valid only when Datatype() == DatatypeBool.
func (id Id) Bool() bool { return id.payload() != 0 }

func (id Id) String() string {
	switch id.Datatype() {
	case DatatypeUndefined:
		return "UNDEF"
	case DatatypeVocabIndex:
		return fmt.Sprintf("V#%d", id.payload())
	case DatatypeLocalVocabIndex:
		return fmt.Sprintf("L#%d", id.payload())
	case DatatypeTextRecordIndex:
		return fmt.Sprintf("T#%d", id.payload())
	case DatatypeInt:
		return fmt.Sprintf("%d", id.Int())
	case DatatypeDouble:
		return fmt.Sprintf("%g", id.Double())
	case DatatypeBool:
		return fmt.Sprintf("%v", id.Bool())
	default:
		return fmt.Sprintf("Id(%#016x)", uint64(id))
	}
}

// Compare orders two Ids first by Datatype, then by payload — a total
// order used for MIN/MAX and for sorting within LocatedTriplesPerBlock.
// It is not a numeric comparison across datatypes: comparing an Int Id to
// a Double Id compares their tags, not their values (see groupby's
// numeric coercion for value-aware MIN/MAX).
func (id Id) Compare(other Id) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}
