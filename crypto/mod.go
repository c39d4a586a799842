// Package crypto defines the minimal signer/verifier/hash interfaces
// shared by every concrete cryptographic backend in this module. The
// only implementation today is package crypto/secp256k1, but keeping the
// interfaces here — rather than folding them into that package — lets
// callers (package txn, package keystore) depend on a stable contract
// instead of a specific curve.
package crypto

import "hash"

// HashFactory builds hash.Hash instances for a fixed algorithm, letting
// callers request a hash function without depending on a specific
// package from the standard library or golang.org/x/crypto.
type HashFactory interface {
	New() hash.Hash
}

// PublicKey identifies a party. Implementations always round-trip
// through MarshalBinary.
type PublicKey interface {
	// MarshalBinary returns the canonical compressed encoding of the key.
	MarshalBinary() ([]byte, error)
	// Equal reports whether other is the same public key.
	Equal(other PublicKey) bool
	// String returns a human-readable, hex-based representation.
	String() string
}

// Signature is an opaque cryptographic signature produced by a Signer
// and checked against a PublicKey.
type Signature interface {
	// MarshalBinary returns the canonical fixed-width encoding.
	MarshalBinary() ([]byte, error)
	// Equal reports whether other carries the same signature bytes.
	Equal(other Signature) bool
}

// Verifier checks a Signature against a message and a PublicKey.
type Verifier interface {
	Verify(pk PublicKey, msg []byte, sig Signature) error
}

// Signer produces signatures under a single key pair.
type Signer interface {
	// GetPublicKey returns the public half of the signing key.
	GetPublicKey() PublicKey
	// Sign returns a Signature over msg. msg is a digest, not raw
	// application data: callers are responsible for hashing first.
	Sign(msg []byte) (Signature, error)
}
