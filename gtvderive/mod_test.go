package gtvderive_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"go.chromia.dev/postchain/gtv"
	"go.chromia.dev/postchain/gtvderive"
)

func TestToValueScalars(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want gtv.Value
	}{
		{"int", int(42), gtv.Int(42)},
		{"int64", int64(-7), gtv.Int(-7)},
		{"bool", true, gtv.Bool(true)},
		{"string", "hello", gtv.Text("hello")},
		{"bytes", []byte{0x01, 0x02}, gtv.Bytes([]byte{0x01, 0x02})},
		{"nil", nil, gtv.Null()},
		{"bigint pointer", big.NewInt(123456789), gtv.BigInt(big.NewInt(123456789))},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := gtvderive.ToValue(c.in)
			require.NoError(t, err)
			require.True(t, c.want.Equal(got))
		})
	}
}

func TestToValueFloatBecomesDecimal(t *testing.T) {
	got, err := gtvderive.ToValue(1.5)
	require.NoError(t, err)
	require.Equal(t, gtv.KindDecimal, got.Kind())
	s, ok := got.AsDecimal()
	require.True(t, ok)
	require.Equal(t, "1.5", s)
}

func TestToValueFloat32UsesNarrowPrecision(t *testing.T) {
	got, err := gtvderive.ToValue(float32(19.99))
	require.NoError(t, err)
	require.Equal(t, gtv.KindDecimal, got.Kind())
	s, ok := got.AsDecimal()
	require.True(t, ok)
	require.Equal(t, "19.99", s)
}

func TestToValueSlice(t *testing.T) {
	got, err := gtvderive.ToValue([]string{"a", "b", "c"})
	require.NoError(t, err)
	want := gtv.NewArray(gtv.Text("a"), gtv.Text("b"), gtv.Text("c"))
	require.True(t, want.Equal(got))
}

func TestToValueMap(t *testing.T) {
	got, err := gtvderive.ToValue(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, gtv.KindDict, got.Kind())
	entries := got.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Key)
	require.Equal(t, "b", entries[1].Key)
}

type account struct {
	Name    string
	Balance int64 `gtv:"balance,bigint"`
	Secret  string `gtv:"-"`
	unexp   int
}

func TestToValueStruct(t *testing.T) {
	a := account{Name: "alice", Balance: 100, Secret: "hidden", unexp: 1}
	got, err := gtvderive.ToValue(a)
	require.NoError(t, err)
	require.Equal(t, gtv.KindDict, got.Kind())

	name, ok := got.Lookup("Name")
	require.True(t, ok)
	text, ok := name.AsText()
	require.True(t, ok)
	require.Equal(t, "alice", text)

	balance, ok := got.Lookup("balance")
	require.True(t, ok)
	require.Equal(t, gtv.KindBigInt, balance.Kind())

	_, ok = got.Lookup("Secret")
	require.False(t, ok)
}

type nested struct {
	Owner account
	Tags  []string
}

func TestToValueNestedStruct(t *testing.T) {
	n := nested{
		Owner: account{Name: "bob", Balance: 5},
		Tags:  []string{"x", "y"},
	}
	got, err := gtvderive.ToValue(n)
	require.NoError(t, err)

	owner, ok := got.Lookup("Owner")
	require.True(t, ok)
	require.Equal(t, gtv.KindDict, owner.Kind())

	tags, ok := got.Lookup("Tags")
	require.True(t, ok)
	require.Equal(t, gtv.KindArray, tags.Kind())
	require.Len(t, tags.Elements(), 2)
}

func TestToValueDecimalTagOnString(t *testing.T) {
	type withDecimal struct {
		Price string `gtv:"price,decimal"`
	}
	got, err := gtvderive.ToValue(withDecimal{Price: "19.99"})
	require.NoError(t, err)
	price, ok := got.Lookup("price")
	require.True(t, ok)
	require.Equal(t, gtv.KindDecimal, price.Kind())
}

func TestToValueRejectsUnknownTagOption(t *testing.T) {
	type withBadTag struct {
		Amount int64 `gtv:"amount,octal"`
	}
	_, err := gtvderive.ToValue(withBadTag{Amount: 1})
	require.ErrorIs(t, err, gtvderive.ErrInvalidTag)
}

func TestToValueRejectsConflictingTagOptions(t *testing.T) {
	type withConflict struct {
		Amount int64 `gtv:"amount,bigint,decimal"`
	}
	_, err := gtvderive.ToValue(withConflict{Amount: 1})
	require.ErrorIs(t, err, gtvderive.ErrInvalidTag)
}

func TestToValueRejectsNonStringMapKey(t *testing.T) {
	_, err := gtvderive.ToValue(map[int]string{1: "a"})
	require.ErrorIs(t, err, gtvderive.ErrNonStringMapKey)
}

func TestToValueRejectsUnsupportedType(t *testing.T) {
	ch := make(chan int)
	_, err := gtvderive.ToValue(ch)
	require.ErrorIs(t, err, gtvderive.ErrUnsupportedType)
}

func TestToArgsAndToOperation(t *testing.T) {
	argsValue, err := gtvderive.ToArgs("alice", 100)
	require.NoError(t, err)
	require.Equal(t, gtv.KindArray, argsValue.Kind())
	require.Len(t, argsValue.Elements(), 2)

	op, err := gtvderive.ToOperation("transfer", "alice", 100)
	require.NoError(t, err)
	require.Equal(t, "transfer", op.Name)
	require.Len(t, op.Args.Elements(), 2)
}

func TestToValuePointerDereferences(t *testing.T) {
	name := "carol"
	got, err := gtvderive.ToValue(&name)
	require.NoError(t, err)
	require.True(t, gtv.Text("carol").Equal(got))
}

func TestToValueNilPointerBecomesNull(t *testing.T) {
	var p *string
	got, err := gtvderive.ToValue(p)
	require.NoError(t, err)
	require.True(t, got.IsNull())
}
