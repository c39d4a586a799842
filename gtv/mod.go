// Package gtv implements the GTV (Generic Transfer Value) data model: a
// recursive, dynamically-typed value tree used by every Postchain request
// and on-chain artifact. It also implements the canonical ASN.1 DER codec
// (der.go) and the Merkle-structured content hash (hash.go) that every
// downstream signature depends on.
package gtv

import (
	"math/big"
	"regexp"
	"sort"

	"golang.org/x/xerrors"
)

// Kind identifies the variant held by a Value.
type Kind int

// The GTV variants. Boolean shares its wire representation with Integer
// (both are DER INTEGER under context tag 3) and Decimal shares its wire
// representation with Text (both are DER UTF8String under context tag 2)
// — see der.go for the encode/decode rules. Because the wire carries no
// discriminant between them, Decode returns a Boolean as an Integer and
// a Decimal as a Text.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindBigInt
	KindDecimal
	KindText
	KindBytes
	KindArray
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Integer"
	case KindBigInt:
		return "BigInteger"
	case KindDecimal:
		return "Decimal"
	case KindText:
		return "Text"
	case KindBytes:
		return "ByteArray"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	default:
		return "Unknown"
	}
}

// DictEntry is a single key/value pair supplied to NewDict. Callers may
// pass entries in any insertion order; NewDict normalizes them to the
// canonical byte-lexicographic key order that the codec requires.
type DictEntry struct {
	Key   string
	Value Value
}

// Value is a GTV value: a boxed tagged union over the nine variants of
// the GTV data model. It is deliberately a single struct rather than an
// interface per variant so that structural equality, traversal, and the
// codec can each be implemented once instead of once per variant.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	big   *big.Int
	text  string // also holds the Decimal textual form
	bytes []byte
	arr   []Value
	dict  []DictEntry // always stored pre-sorted by canonical key order
}

var decimalPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// Null returns the GTV null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a GTV boolean. It is encoded on the wire exactly like an
// Integer 0/1; decode can never distinguish it back from an Integer and
// always returns an Integer for it.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a GTV integer that fits in a signed 64-bit word.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// BigInt returns a GTV big integer. v is copied so the caller may reuse
// or mutate its own big.Int afterward.
func BigInt(v *big.Int) Value {
	return Value{kind: KindBigInt, big: new(big.Int).Set(v)}
}

// Integer picks Int or BigInt depending on whether v fits in a signed
// 64-bit word: values outside that range are always BigInteger.
func Integer(v *big.Int) Value {
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return BigInt(v)
}

// Decimal returns a GTV decimal from its canonical textual form (e.g.
// "3.14", "-0.0001"). It returns ErrInvalidDecimal if s is not a plain
// decimal literal (no exponent, no leading '+', no leading zeros other
// than "0" itself).
func Decimal(s string) (Value, error) {
	if !decimalPattern.MatchString(s) {
		return Value{}, xerrors.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return Value{kind: KindDecimal, text: s}, nil
}

// MustDecimal is like Decimal but panics on an invalid literal. It exists
// for tests and for constructing constants from literals known to be
// valid at compile time.
func MustDecimal(s string) Value {
	v, err := Decimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Text returns a GTV UTF-8 string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bytes returns a GTV byte array. b is copied.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, bytes: cp}
}

// NewArray returns a GTV array preserving the given order.
func NewArray(vs ...Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindArray, arr: cp}
}

// NewDict returns a GTV dict from insertion-ordered entries, normalizing
// them to canonical key order. It returns ErrDuplicateDictKey if two
// entries share a key. Dict keys must be unique, and callers are better
// served by catching that as early as construction time.
func NewDict(entries ...DictEntry) (Value, error) {
	cp := make([]DictEntry, len(entries))
	copy(cp, entries)

	sort.Slice(cp, func(i, j int) bool { return cp[i].Key < cp[j].Key })

	for i := 1; i < len(cp); i++ {
		if cp[i].Key == cp[i-1].Key {
			return Value{}, xerrors.Errorf("%w: %q", ErrDuplicateDictKey, cp[i].Key)
		}
	}

	return Value{kind: KindDict, dict: cp}, nil
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and true if v holds a Boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the int64 payload and true if v holds an Integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsBigInt returns the big.Int payload and true if v holds a BigInteger.
// The returned value is a copy.
func (v Value) AsBigInt() (*big.Int, bool) {
	if v.kind != KindBigInt {
		return nil, false
	}
	return new(big.Int).Set(v.big), true
}

// AsDecimal returns the textual decimal payload and true if v holds a
// Decimal.
func (v Value) AsDecimal() (string, bool) {
	if v.kind != KindDecimal {
		return "", false
	}
	return v.text, true
}

// AsText returns the string payload and true if v holds a Text.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsBytes returns the byte payload and true if v holds a ByteArray. The
// returned slice is a copy.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)
	return cp, true
}

// Elements returns the elements of v if it holds an Array, otherwise nil.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Entries returns the entries of v, in canonical key order, if it holds a
// Dict, otherwise nil.
func (v Value) Entries() []DictEntry {
	if v.kind != KindDict {
		return nil
	}
	return v.dict
}

// Lookup returns the value associated with key in a Dict, and true if
// present.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != KindDict {
		return Value{}, false
	}
	i := sort.Search(len(v.dict), func(i int) bool { return v.dict[i].Key >= key })
	if i < len(v.dict) && v.dict[i].Key == key {
		return v.dict[i].Value, true
	}
	return Value{}, false
}

// Equal reports whether v and other are structurally equal: positional
// for Array, key-sorted for Dict (which is always already true of the
// internal representation).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindBigInt:
		return v.big.Cmp(other.big) == 0
	case KindDecimal, KindText:
		return v.text == other.text
	case KindBytes:
		if len(v.bytes) != len(other.bytes) {
			return false
		}
		for i := range v.bytes {
			if v.bytes[i] != other.bytes[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.dict) != len(other.dict) {
			return false
		}
		for i := range v.dict {
			if v.dict[i].Key != other.dict[i].Key || !v.dict[i].Value.Equal(other.dict[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Operation is a Postchain operation: a name and a GTV array of
// arguments. Args is conventionally either a plain Array of positional
// arguments, or a single-element Array wrapping a Dict of named
// arguments — the codec treats both identically.
type Operation struct {
	Name string
	Args Value
}

// NewOperation builds an Operation from positional arguments.
func NewOperation(name string, args ...Value) Operation {
	return Operation{Name: name, Args: NewArray(args...)}
}

// NewNamedOperation builds an Operation whose sole argument is a Dict of
// named arguments, the conventional shape for keyword-style calls.
func NewNamedOperation(name string, entries ...DictEntry) (Operation, error) {
	dict, err := NewDict(entries...)
	if err != nil {
		return Operation{}, xerrors.Errorf("couldn't build named args: %v", err)
	}
	return Operation{Name: name, Args: NewArray(dict)}, nil
}

// Value turns an Operation into the GTV Array [name, args] used both as
// an on-wire representation and for hashing.
func (op Operation) Value() Value {
	return NewArray(Text(op.Name), op.Args)
}
