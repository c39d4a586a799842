package txn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.chromia.dev/postchain/crypto/secp256k1"
	"go.chromia.dev/postchain/gtv"
	"go.chromia.dev/postchain/txn"
)

func newTestSigner(t *testing.T) secp256k1.Signer {
	t.Helper()
	s, err := secp256k1.NewSigner()
	require.NoError(t, err)
	return s
}

func TestBuildAndSignSingleParty(t *testing.T) {
	signer := newTestSigner(t)
	rid := []byte{0x01, 0x02, 0x03}

	b := txn.NewBuilder(rid)
	b.AddSigner(signer.GetPublicKey())
	b.AddOperation(gtv.NewOperation("transfer", gtv.Text("alice"), gtv.Int(100)))

	tx, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, tx.Sign(signer))

	encoded, err := tx.ToBytes()
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := gtv.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, gtv.KindArray, decoded.Kind())
	require.Len(t, decoded.Elements(), 2)
}

func TestTxRIDStableAcrossSigning(t *testing.T) {
	signer := newTestSigner(t)

	b := txn.NewBuilder([]byte("chain"))
	b.AddSigner(signer.GetPublicKey())
	b.AddOperation(gtv.NewOperation("noop"))

	tx, err := b.Build()
	require.NoError(t, err)

	before := tx.TxRID()
	require.NoError(t, tx.Sign(signer))
	after := tx.TxRID()

	require.Equal(t, before, after)
}

func TestMultiSignFinalizesRIDAfterAllSigners(t *testing.T) {
	alice := newTestSigner(t)
	bob := newTestSigner(t)

	b := txn.NewBuilder([]byte("chain"))
	b.AddSigner(alice.GetPublicKey())
	b.AddSigner(bob.GetPublicKey())
	b.AddOperation(gtv.NewOperation("swap"))

	tx, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, tx.MultiSign(alice, bob))

	encoded, err := tx.ToBytes()
	require.NoError(t, err)

	decoded, err := gtv.Decode(encoded)
	require.NoError(t, err)
	sigsArray := decoded.Elements()[1]
	require.Len(t, sigsArray.Elements(), 2)
}

func TestSignAppendsUnregisteredSigner(t *testing.T) {
	registered := newTestSigner(t)
	stranger := newTestSigner(t)

	b := txn.NewBuilder([]byte("chain"))
	b.AddSigner(registered.GetPublicKey())
	b.AddOperation(gtv.NewOperation("noop"))
	tx, err := b.Build()
	require.NoError(t, err)
	require.Len(t, tx.Signers(), 1)

	before := tx.TxRID()
	require.NoError(t, tx.Sign(stranger))
	after := tx.TxRID()

	require.Len(t, tx.Signers(), 2)
	require.True(t, tx.Signers()[1].Equal(stranger.GetPublicKey()))
	require.NotEqual(t, before, after)

	require.NoError(t, tx.Sign(registered))
	encoded, err := tx.ToBytes()
	require.NoError(t, err)

	decoded, err := gtv.Decode(encoded)
	require.NoError(t, err)
	sigsArray := decoded.Elements()[1]
	require.Len(t, sigsArray.Elements(), 2)
}

func TestSignRejectsAfterFinalize(t *testing.T) {
	signer := newTestSigner(t)

	b := txn.NewBuilder([]byte("chain"))
	b.AddSigner(signer.GetPublicKey())
	b.AddOperation(gtv.NewOperation("noop"))
	tx, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, tx.Sign(signer))

	_, err = tx.ToBytes()
	require.NoError(t, err)

	err = tx.Sign(signer)
	require.ErrorIs(t, err, txn.ErrAlreadyFinalized)
}

func TestToBytesRejectsIncompleteSignatures(t *testing.T) {
	alice := newTestSigner(t)
	bob := newTestSigner(t)

	b := txn.NewBuilder([]byte("chain"))
	b.AddSigner(alice.GetPublicKey())
	b.AddSigner(bob.GetPublicKey())
	b.AddOperation(gtv.NewOperation("noop"))
	tx, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, tx.Sign(alice))

	_, err = tx.ToBytes()
	require.ErrorIs(t, err, txn.ErrIncomplete)
}

func TestBuildWithNoSignersHasStableRID(t *testing.T) {
	newTx := func() *txn.Transaction {
		b := txn.NewBuilder([]byte("chain"))
		b.AddOperation(gtv.NewOperation("create_book", gtv.Text("Dune")))
		tx, err := b.Build()
		require.NoError(t, err)
		return tx
	}

	tx1 := newTx()
	tx2 := newTx()

	require.Empty(t, tx1.Signers())
	require.Equal(t, tx1.TxRID(), tx2.TxRID())

	encoded, err := tx1.ToBytes()
	require.NoError(t, err)

	decoded, err := gtv.Decode(encoded)
	require.NoError(t, err)
	sigsArray := decoded.Elements()[1]
	require.Empty(t, sigsArray.Elements())
}

func TestSignerListAffectsTxRID(t *testing.T) {
	alice := newTestSigner(t)
	bob := newTestSigner(t)

	b1 := txn.NewBuilder([]byte("chain"))
	b1.AddSigner(alice.GetPublicKey())
	b1.AddOperation(gtv.NewOperation("noop"))
	tx1, err := b1.Build()
	require.NoError(t, err)

	b2 := txn.NewBuilder([]byte("chain"))
	b2.AddSigner(alice.GetPublicKey())
	b2.AddSigner(bob.GetPublicKey())
	b2.AddOperation(gtv.NewOperation("noop"))
	tx2, err := b2.Build()
	require.NoError(t, err)

	require.NotEqual(t, tx1.TxRID(), tx2.TxRID())
}

func TestManagerMake(t *testing.T) {
	alice := newTestSigner(t)
	bob := newTestSigner(t)

	m := txn.NewManager([]byte("chain"))
	tx, err := m.Make([]gtv.Operation{gtv.NewOperation("vote", gtv.Int(1))}, alice, bob)
	require.NoError(t, err)

	encoded, err := tx.ToBytes()
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
}
