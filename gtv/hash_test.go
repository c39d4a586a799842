package gtv

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

// independentSum reproduces the hash algorithm using nothing but the
// standard library, so these tests do not simply check the
// implementation against itself.
func independentSum(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestHashIntegerLeaf(t *testing.T) {
	// Integer(42) DER-encodes its inner INTEGER as 02 01 2A.
	want := independentSum([]byte{0x01, 0x03}, []byte{0x02, 0x01, 0x2A})
	require.Equal(t, want, Hash(Int(42)))
}

func TestHashNullLeaf(t *testing.T) {
	want := independentSum([]byte{0x01, 0x00}, []byte{0x05, 0x00})
	require.Equal(t, want, Hash(Null()))
}

func TestHashEmptyArray(t *testing.T) {
	want := independentSum([]byte{0x01, 0x05})
	require.Equal(t, want, Hash(NewArray()))
}

func TestHashEmptyDict(t *testing.T) {
	d, err := NewDict()
	require.NoError(t, err)
	want := independentSum([]byte{0x01, 0x04})
	require.Equal(t, want, Hash(d))
}

func TestHashSingleElementArrayPromotesUnchanged(t *testing.T) {
	elem := Int(42)
	elemHash := Hash(elem)
	want := independentSum([]byte{0x07, 0x05}, elemHash[:])
	require.Equal(t, want, Hash(NewArray(elem)))
}

func TestHashTwoElementArrayPairsOnce(t *testing.T) {
	a, b := Int(1), Int(2)
	ha, hb := Hash(a), Hash(b)
	node := independentSum([]byte{0x00}, ha[:], hb[:])
	want := independentSum([]byte{0x07, 0x05}, node[:])
	require.Equal(t, want, Hash(NewArray(a, b)))
}

func TestHashThreeElementArrayPromotesOddOneOut(t *testing.T) {
	a, b, c := Int(1), Int(2), Int(3)
	ha, hb, hc := Hash(a), Hash(b), Hash(c)
	level1Node := independentSum([]byte{0x00}, ha[:], hb[:])
	// c is unpaired at level 1 and promotes to level 2 unchanged.
	root := independentSum([]byte{0x00}, level1Node[:], hc[:])
	want := independentSum([]byte{0x07, 0x05}, root[:])
	require.Equal(t, want, Hash(NewArray(a, b, c)))
}

func TestHashSingleEntryDict(t *testing.T) {
	value := Int(1)
	keyHash := independentSum([]byte{0x01, 0x02}, []byte("a"))
	valHash := Hash(value)
	entryHash := independentSum([]byte{0x00}, keyHash[:], valHash[:])
	want := independentSum([]byte{0x07, 0x04}, entryHash[:])

	d, err := NewDict(DictEntry{Key: "a", Value: value})
	require.NoError(t, err)
	require.Equal(t, want, Hash(d))
}

func TestHashDictKeyOrderDoesNotAffectResult(t *testing.T) {
	d1, err := NewDict(
		DictEntry{Key: "b", Value: Int(2)},
		DictEntry{Key: "a", Value: Int(1)},
	)
	require.NoError(t, err)

	d2, err := NewDict(
		DictEntry{Key: "a", Value: Int(1)},
		DictEntry{Key: "b", Value: Int(2)},
	)
	require.NoError(t, err)

	require.Equal(t, Hash(d1), Hash(d2))
}

func TestHashDeterministic(t *testing.T) {
	v := NewArray(Text("foo"), Int(1), Bytes([]byte{1, 2, 3}))
	require.Equal(t, Hash(v), Hash(v))
}

func TestHashDistinguishesArrayFromDictOfSameShape(t *testing.T) {
	arr := NewArray(Int(1))
	dict, err := NewDict(DictEntry{Key: "x", Value: Int(1)})
	require.NoError(t, err)
	require.NotEqual(t, Hash(arr), Hash(dict))
}

func TestHashChangesWithContent(t *testing.T) {
	a := NewArray(Int(1), Int(2))
	b := NewArray(Int(1), Int(3))
	require.NotEqual(t, Hash(a), Hash(b))
}

func TestEqualValuesHashEqual(t *testing.T) {
	a := NewArray(Text("x"), Int(5))
	b := NewArray(Text("x"), Int(5))
	require.True(t, a.Equal(b))
	require.Equal(t, Hash(a), Hash(b))
}
