// Package txn implements transaction assembly and multi-party signing.
//
// A transaction's identity, its RID, is the content hash of its body
// (blockchain RID, operations, and the current signer list). The signer
// list may start empty (a transaction with no signers has a perfectly
// stable RID) and grows as private keys are supplied: Sign appends a
// not-yet-seen public key to the list and recomputes the RID before
// producing that key's signature. Because of that, signing with a new
// key invalidates any signature already collected against the
// previous, shorter signer list. MultiSign avoids this hazard when the
// full signer set is known upfront: it appends every new signer first,
// computes the RID once, and only then signs with each key.
package txn

import (
	"bytes"

	"golang.org/x/xerrors"

	"go.chromia.dev/postchain"
	"go.chromia.dev/postchain/crypto"
	"go.chromia.dev/postchain/gtv"
)

// Builder accumulates operations and signers for a transaction that has
// not yet been finalized.
type Builder struct {
	blockchainRID []byte
	operations    []gtv.Operation
	signers       []crypto.PublicKey
}

// NewBuilder returns a Builder for a transaction on the chain identified
// by blockchainRID.
func NewBuilder(blockchainRID []byte) *Builder {
	rid := make([]byte, len(blockchainRID))
	copy(rid, blockchainRID)
	return &Builder{blockchainRID: rid}
}

// AddOperation appends an operation to the transaction body, in call
// order.
func (b *Builder) AddOperation(op gtv.Operation) *Builder {
	b.operations = append(b.operations, op)
	return b
}

// AddSigner registers a public key up front, before any signature is
// produced. Signer order is preserved and is significant: it determines
// both the on-wire signer list and the position each party's signature
// occupies in the signature array. Registering here is optional (Sign
// and MultiSign append a signer's key automatically the first time it
// is used), but pre-registering fixes the position for a signer whose
// key is known before its private half is available to sign with.
func (b *Builder) AddSigner(pk crypto.PublicKey) *Builder {
	b.signers = append(b.signers, pk)
	return b
}

// Build fixes the operation and initial signer list and computes the
// transaction's RID. A transaction may have no signers at all — its RID
// is still well-defined and stable across repeated builds of the same
// body. The returned Transaction has no signatures yet; call Sign or
// MultiSign to add them.
func (b *Builder) Build() (*Transaction, error) {
	signerBytes := make([][]byte, len(b.signers))
	for i, pk := range b.signers {
		encoded, err := pk.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("couldn't marshal signer %d: %v: %w", i, err, ErrInvalidKey)
		}
		signerBytes[i] = encoded
	}

	tx := &Transaction{
		blockchainRID: b.blockchainRID,
		operations:    append([]gtv.Operation{}, b.operations...),
		signerKeys:    append([]crypto.PublicKey{}, b.signers...),
		signerBytes:   signerBytes,
		signatures:    make([]crypto.Signature, len(b.signers)),
	}
	tx.txRID = gtv.Hash(tx.bodyValue())

	return tx, nil
}

// Transaction is an assembled, RID-bound transaction body together with
// whatever signatures have been collected so far.
type Transaction struct {
	blockchainRID []byte
	operations    []gtv.Operation
	signerKeys    []crypto.PublicKey
	signerBytes   [][]byte
	signatures    []crypto.Signature
	txRID         [32]byte
	frozen        bool
}

func (t *Transaction) bodyValue() gtv.Value {
	opValues := make([]gtv.Value, len(t.operations))
	for i, op := range t.operations {
		opValues[i] = op.Value()
	}

	signerValues := make([]gtv.Value, len(t.signerBytes))
	for i, s := range t.signerBytes {
		signerValues[i] = gtv.Bytes(s)
	}

	return gtv.NewArray(
		gtv.Bytes(t.blockchainRID),
		gtv.NewArray(opValues...),
		gtv.NewArray(signerValues...),
	)
}

// TxRID returns the transaction's content hash over its current body.
// It is stable as long as the signer list doesn't grow; Sign and
// MultiSign recompute it whenever they append a new signer.
func (t *Transaction) TxRID() [32]byte {
	return t.txRID
}

// TxRIDHex returns TxRID as a lowercase hex string.
func (t *Transaction) TxRIDHex() string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range t.txRID {
		out[i*2] = hexdigits[b>>4]
		out[i*2+1] = hexdigits[b&0x0F]
	}
	return string(out)
}

// appendSigner returns the index of pk in the signer list, appending it
// if it is not already present. grew reports whether the list changed,
// so callers can tell whether the RID needs recomputing. It returns
// ErrSignerMismatch only when pk reports itself equal to an existing
// entry but marshals to different bytes than that entry, which points
// to a broken PublicKey.Equal implementation rather than an
// unregistered signer.
func (t *Transaction) appendSigner(pk crypto.PublicKey) (idx int, grew bool, err error) {
	encoded, err := pk.MarshalBinary()
	if err != nil {
		return -1, false, xerrors.Errorf("couldn't marshal signer public key: %v: %w", err, ErrInvalidKey)
	}

	for i, k := range t.signerKeys {
		if k.Equal(pk) {
			if !bytes.Equal(t.signerBytes[i], encoded) {
				return -1, false, ErrSignerMismatch
			}
			return i, false, nil
		}
	}

	idx = len(t.signerKeys)
	t.signerKeys = append(t.signerKeys, pk)
	t.signerBytes = append(t.signerBytes, encoded)
	t.signatures = append(t.signatures, nil)
	return idx, true, nil
}

// Sign signs the transaction's RID with signer. If signer's public key
// is not already in the signer list, it is appended and the RID is
// recomputed over the grown body before signing, which means any
// signature already collected against the previous body is no longer
// valid for the new one. Returns ErrAlreadyFinalized if the transaction
// has already been finalized by ToBytes.
func (t *Transaction) Sign(signer crypto.Signer) error {
	if t.frozen {
		return ErrAlreadyFinalized
	}

	idx, grew, err := t.appendSigner(signer.GetPublicKey())
	if err != nil {
		return err
	}
	if grew {
		t.txRID = gtv.Hash(t.bodyValue())
	}

	sig, err := signer.Sign(t.txRID[:])
	if err != nil {
		return xerrors.Errorf("%v: %w", err, ErrSigningBackend)
	}
	t.signatures[idx] = sig
	return nil
}

// MultiSign signs the transaction with each of signers. Unlike calling
// Sign repeatedly, it appends every not-yet-seen signer to the list
// first, recomputes the RID once over the fully grown body, and only
// then produces each signature — so signers passed together in one
// MultiSign call never invalidate each other's signatures.
func (t *Transaction) MultiSign(signers ...crypto.Signer) error {
	if t.frozen {
		return ErrAlreadyFinalized
	}

	indices := make([]int, len(signers))
	grew := false
	for i, s := range signers {
		idx, g, err := t.appendSigner(s.GetPublicKey())
		if err != nil {
			return err
		}
		indices[i] = idx
		grew = grew || g
	}
	if grew {
		t.txRID = gtv.Hash(t.bodyValue())
	}

	for i, s := range signers {
		sig, err := s.Sign(t.txRID[:])
		if err != nil {
			return xerrors.Errorf("%v: %w", err, ErrSigningBackend)
		}
		t.signatures[indices[i]] = sig
	}
	return nil
}

// Finalize checks that every registered signer has produced a
// signature and freezes the transaction against further signing. It is
// idempotent. ToBytes calls it automatically.
func (t *Transaction) Finalize() error {
	if t.frozen {
		return nil
	}
	for i, sig := range t.signatures {
		if sig == nil {
			return xerrors.Errorf("signer %d: %w", i, ErrIncomplete)
		}
	}
	t.frozen = true
	return nil
}

// ToBytes finalizes the transaction and renders it in the canonical
// wire format: a GTV Array of [body, Array(signatures)].
func (t *Transaction) ToBytes() ([]byte, error) {
	if err := t.Finalize(); err != nil {
		return nil, err
	}

	sigValues := make([]gtv.Value, len(t.signatures))
	for i, sig := range t.signatures {
		encoded, err := sig.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("couldn't marshal signature %d: %v", i, err)
		}
		sigValues[i] = gtv.Bytes(encoded)
	}

	wire := gtv.NewArray(t.bodyValue(), gtv.NewArray(sigValues...))
	return gtv.Encode(wire), nil
}

// Signers returns the transaction's current signer public keys, in
// signing order. The list can grow after Build() as Sign and MultiSign
// append not-yet-seen signers.
func (t *Transaction) Signers() []crypto.PublicKey {
	return append([]crypto.PublicKey{}, t.signerKeys...)
}

// Manager is a convenience wrapper that builds and fully signs a
// transaction in one call, for the common case of assembling a
// transaction with every signer's key pair on hand at once.
type Manager struct {
	blockchainRID []byte
}

// NewManager returns a Manager for transactions on the chain identified
// by blockchainRID.
func NewManager(blockchainRID []byte) *Manager {
	return &Manager{blockchainRID: blockchainRID}
}

// NewBuilder returns a fresh Builder for the manager's chain.
func (m *Manager) NewBuilder() *Builder {
	return NewBuilder(m.blockchainRID)
}

// Make builds a transaction from ops, registers every signer's public
// key, and signs it with all of them, in order. Because Builder finalizes
// the signer list before computing the RID, all of the signatures cover
// the same, fully-determined transaction identity.
func (m *Manager) Make(ops []gtv.Operation, signers ...crypto.Signer) (*Transaction, error) {
	b := m.NewBuilder()
	for _, s := range signers {
		b.AddSigner(s.GetPublicKey())
	}
	for _, op := range ops {
		b.AddOperation(op)
	}

	tx, err := b.Build()
	if err != nil {
		return nil, xerrors.Errorf("couldn't build transaction: %v", err)
	}

	if err := tx.MultiSign(signers...); err != nil {
		return nil, xerrors.Errorf("couldn't sign transaction: %v", err)
	}

	postchain.Logger.Debug().
		Str("tx_rid", tx.TxRIDHex()).
		Int("signers", len(signers)).
		Int("operations", len(ops)).
		Msg("transaction assembled and signed")

	return tx, nil
}
