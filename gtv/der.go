package gtv

import (
	"math/big"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

// Universal ASN.1 tags used by the inner values wrapped by every GTV
// context tag.
const (
	tagUniversalInteger    = 0x02
	tagUniversalOctet      = 0x04
	tagUniversalNull       = 0x05
	tagUniversalSequence   = 0x30
	tagUniversalUTF8String = 0x0C
)

// Context-specific explicit constructed outer tags, one per GTV variant.
// The numeric suffix is both the ASN.1 tag number and the "type_byte"
// discriminant used by the content hash in hash.go.
const (
	tagNull       = 0xA0
	tagByteArray  = 0xA1
	tagText       = 0xA2
	tagInteger    = 0xA3
	tagDict       = 0xA4
	tagArray      = 0xA5
	tagBigInteger = 0xA6
)

const maxDepth = 256

// ErrIntegerOverflow is returned when a DER Integer (context tag 3)
// carries a value outside the signed 64-bit range. Values that large
// must use the BigInteger variant (context tag 6) instead.
var ErrIntegerOverflow = xerrors.New("gtv: integer value out of signed 64-bit range")

// encodeLength renders n in canonical DER length form: short form for
// n < 128, otherwise the minimal-length long form.
func encodeLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var raw []byte
	for n > 0 {
		raw = append([]byte{byte(n & 0xFF)}, raw...)
		n >>= 8
	}
	return append([]byte{0x80 | byte(len(raw))}, raw...)
}

func tlv(tag byte, content []byte) []byte {
	out := make([]byte, 0, 2+len(content))
	out = append(out, tag)
	out = append(out, encodeLength(len(content))...)
	out = append(out, content...)
	return out
}

// minimalIntBytes renders v in minimal-length two's-complement big-endian
// form, the canonical DER encoding of an INTEGER value.
func minimalIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0x00}
	}
	if v.Sign() > 0 {
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}

	n := 1
	for {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(8*n-1))
		if v.Cmp(new(big.Int).Neg(limit)) >= 0 {
			break
		}
		n++
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	rep := new(big.Int).Add(v, mod)
	b := rep.Bytes()
	if len(b) < n {
		pad := make([]byte, n-len(b))
		b = append(pad, b...)
	}
	return b
}

func isMinimalInteger(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if len(b) == 1 {
		return true
	}
	if b[0] == 0x00 && b[1]&0x80 == 0 {
		return false
	}
	if b[0] == 0xFF && b[1]&0x80 != 0 {
		return false
	}
	return true
}

func decodeTwosComplement(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		v.Sub(v, mod)
	}
	return v
}

// Encode renders v as canonical DER.
func Encode(v Value) []byte {
	switch v.kind {
	case KindNull:
		return tlv(tagNull, tlv(tagUniversalNull, nil))
	case KindBytes:
		return tlv(tagByteArray, tlv(tagUniversalOctet, v.bytes))
	case KindText:
		return tlv(tagText, tlv(tagUniversalUTF8String, []byte(v.text)))
	case KindDecimal:
		return tlv(tagText, tlv(tagUniversalUTF8String, []byte(v.text)))
	case KindBool:
		i := int64(0)
		if v.b {
			i = 1
		}
		return tlv(tagInteger, tlv(tagUniversalInteger, minimalIntBytes(big.NewInt(i))))
	case KindInt:
		return tlv(tagInteger, tlv(tagUniversalInteger, minimalIntBytes(big.NewInt(v.i))))
	case KindBigInt:
		return tlv(tagBigInteger, tlv(tagUniversalInteger, minimalIntBytes(v.big)))
	case KindDict:
		var seq []byte
		for _, e := range v.dict {
			entry := tlv(tagUniversalUTF8String, []byte(e.Key))
			entry = append(entry, Encode(e.Value)...)
			seq = append(seq, tlv(tagUniversalSequence, entry)...)
		}
		return tlv(tagDict, tlv(tagUniversalSequence, seq))
	case KindArray:
		var seq []byte
		for _, e := range v.arr {
			seq = append(seq, Encode(e)...)
		}
		return tlv(tagArray, tlv(tagUniversalSequence, seq))
	default:
		panic("gtv: unknown Kind in Encode")
	}
}

// readTLV parses one tag-length-value record from the front of data,
// enforcing DER's canonical (minimal, definite-form) length encoding. It
// returns the tag, the content bytes, and the total number of bytes
// consumed.
func readTLV(data []byte) (tag byte, content []byte, total int, err error) {
	if len(data) < 2 {
		return 0, nil, 0, xerrors.Errorf("couldn't read tag/length: %w", ErrTruncatedLength)
	}
	tag = data[0]
	lenByte := data[1]

	var length, lenFieldSize int
	if lenByte&0x80 == 0 {
		length = int(lenByte)
		lenFieldSize = 1
	} else {
		numBytes := int(lenByte & 0x7F)
		if numBytes == 0 {
			return 0, nil, 0, xerrors.Errorf("indefinite length forbidden: %w", ErrNonMinimalLength)
		}
		if len(data) < 2+numBytes {
			return 0, nil, 0, xerrors.Errorf("couldn't read long length: %w", ErrTruncatedLength)
		}
		lb := data[2 : 2+numBytes]
		if lb[0] == 0x00 {
			return 0, nil, 0, xerrors.Errorf("leading zero in length: %w", ErrNonMinimalLength)
		}
		for _, b := range lb {
			length = length<<8 | int(b)
		}
		if length < 0x80 {
			return 0, nil, 0, xerrors.Errorf("long form used for short length: %w", ErrNonMinimalLength)
		}
		lenFieldSize = 1 + numBytes
	}

	total = 1 + lenFieldSize + length
	if len(data) < total {
		return 0, nil, 0, xerrors.Errorf("content shorter than declared length: %w", ErrTruncatedValue)
	}
	return tag, data[1+lenFieldSize : total], total, nil
}

func readExplicit(content []byte, wantInner byte) ([]byte, error) {
	innerTag, innerContent, innerTotal, err := readTLV(content)
	if err != nil {
		return nil, err
	}
	if innerTag != wantInner {
		return nil, xerrors.Errorf("expected inner tag 0x%02x, got 0x%02x: %w", wantInner, innerTag, ErrUnexpectedTag)
	}
	if innerTotal != len(content) {
		return nil, xerrors.Errorf("bytes remain after inner value: %w", ErrTrailingBytes)
	}
	return innerContent, nil
}

// Decode parses a single canonical DER-encoded GTV value from data. It
// returns ErrTrailingBytes if data contains anything past the one value.
func Decode(data []byte) (Value, error) {
	v, n, err := parseValue(data, 0)
	if err != nil {
		return Value{}, err
	}
	if n != len(data) {
		return Value{}, xerrors.Errorf("%d bytes remain after top-level value: %w", len(data)-n, ErrTrailingBytes)
	}
	return v, nil
}

func parseValue(data []byte, depth int) (Value, int, error) {
	if depth > maxDepth {
		return Value{}, 0, xerrors.Errorf("at depth %d: %w", depth, ErrDepthExceeded)
	}

	tag, content, total, err := readTLV(data)
	if err != nil {
		return Value{}, 0, err
	}

	switch tag {
	case tagNull:
		inner, err := readExplicit(content, tagUniversalNull)
		if err != nil {
			return Value{}, 0, err
		}
		if len(inner) != 0 {
			return Value{}, 0, xerrors.Errorf("NULL with non-empty content: %w", ErrTrailingBytes)
		}
		return Null(), total, nil

	case tagByteArray:
		inner, err := readExplicit(content, tagUniversalOctet)
		if err != nil {
			return Value{}, 0, err
		}
		return Bytes(inner), total, nil

	case tagText:
		inner, err := readExplicit(content, tagUniversalUTF8String)
		if err != nil {
			return Value{}, 0, err
		}
		if !utf8.Valid(inner) {
			return Value{}, 0, xerrors.Errorf("%w", ErrInvalidUTF8)
		}
		return Text(string(inner)), total, nil

	case tagInteger:
		inner, err := readExplicit(content, tagUniversalInteger)
		if err != nil {
			return Value{}, 0, err
		}
		if !isMinimalInteger(inner) {
			return Value{}, 0, xerrors.Errorf("%w", ErrNonMinimalInteger)
		}
		big := decodeTwosComplement(inner)
		if !big.IsInt64() {
			return Value{}, 0, xerrors.Errorf("%w", ErrIntegerOverflow)
		}
		return Int(big.Int64()), total, nil

	case tagBigInteger:
		inner, err := readExplicit(content, tagUniversalInteger)
		if err != nil {
			return Value{}, 0, err
		}
		if !isMinimalInteger(inner) {
			return Value{}, 0, xerrors.Errorf("%w", ErrNonMinimalInteger)
		}
		return BigInt(decodeTwosComplement(inner)), total, nil

	case tagDict:
		seq, err := readExplicit(content, tagUniversalSequence)
		if err != nil {
			return Value{}, 0, err
		}
		entries, err := parseDictEntries(seq, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{kind: KindDict, dict: entries}, total, nil

	case tagArray:
		seq, err := readExplicit(content, tagUniversalSequence)
		if err != nil {
			return Value{}, 0, err
		}
		elems, err := parseArrayElements(seq, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{kind: KindArray, arr: elems}, total, nil

	default:
		return Value{}, 0, xerrors.Errorf("tag 0x%02x: %w", tag, ErrUnexpectedTag)
	}
}

func parseArrayElements(seq []byte, depth int) ([]Value, error) {
	var elems []Value
	pos := 0
	for pos < len(seq) {
		v, n, err := parseValue(seq[pos:], depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		pos += n
	}
	return elems, nil
}

func parseDictEntries(seq []byte, depth int) ([]DictEntry, error) {
	var entries []DictEntry
	pos := 0
	prevKey := ""
	first := true

	for pos < len(seq) {
		entryTag, entryContent, entryTotal, err := readTLV(seq[pos:])
		if err != nil {
			return nil, err
		}
		if entryTag != tagUniversalSequence {
			return nil, xerrors.Errorf("dict entry tag 0x%02x: %w", entryTag, ErrUnexpectedTag)
		}

		keyTag, keyBytes, keyTotal, err := readTLV(entryContent)
		if err != nil {
			return nil, err
		}
		if keyTag != tagUniversalUTF8String {
			return nil, xerrors.Errorf("dict key tag 0x%02x: %w", keyTag, ErrUnexpectedTag)
		}
		if !utf8.Valid(keyBytes) {
			return nil, xerrors.Errorf("dict key: %w", ErrInvalidUTF8)
		}
		key := string(keyBytes)

		val, valTotal, err := parseValue(entryContent[keyTotal:], depth)
		if err != nil {
			return nil, err
		}
		if keyTotal+valTotal != len(entryContent) {
			return nil, xerrors.Errorf("dict entry %q: %w", key, ErrTrailingBytes)
		}

		if !first {
			if key == prevKey {
				return nil, xerrors.Errorf("%w: %q", ErrDuplicateDictKey, key)
			}
			if key < prevKey {
				return nil, xerrors.Errorf("%w: %q after %q", ErrUnorderedDictKeys, key, prevKey)
			}
		}
		first = false
		prevKey = key

		entries = append(entries, DictEntry{Key: key, Value: val})
		pos += entryTotal
	}
	return entries, nil
}
