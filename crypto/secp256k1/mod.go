// Package secp256k1 implements the cryptographic primitives for the
// secp256k1 elliptic curve: ECDSA signatures with RFC 6979 deterministic
// nonces and BIP-62 low-S normalization, over 33-byte compressed public
// keys and 64-byte raw (r || s) signatures.
//
// Related standard:
//
// Standards for Efficient Cryptography 2 (SEC2), secp256k1 parameters
// https://www.secg.org/sec2-v2.pdf
package secp256k1

import (
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/xerrors"

	"go.chromia.dev/postchain/crypto"
)

const (
	// Algorithm is the name of the curve used for signatures.
	Algorithm = "SECP256K1"

	rawSignatureLength = 64
	rawKeyHalfLength   = 32
)

// curveOrderHalf is floor(N/2), where N is the order of the secp256k1
// group. A signature with S greater than this value is the malleable
// twin of one with S below it and must be rejected on verification.
var curveOrderHalf = func() *big.Int {
	n, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	if !ok {
		panic("secp256k1: couldn't parse curve order")
	}
	return new(big.Int).Rsh(n, 1)
}()

// PublicKey is the public key adapter to the decred secp256k1 point.
//
// - implements crypto.PublicKey
type PublicKey struct {
	key *secp256k1.PublicKey
}

// NewPublicKey parses a 33-byte compressed (or 65-byte uncompressed)
// secp256k1 public key.
func NewPublicKey(data []byte) (PublicKey, error) {
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("couldn't parse public key: %v: %w", err, ErrInvalidPublicKey)
	}
	return PublicKey{key: key}, nil
}

// MarshalBinary implements crypto.PublicKey. It returns the 33-byte
// compressed encoding of the key.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	if pk.key == nil {
		return nil, xerrors.Errorf("%w: empty key", ErrInvalidPublicKey)
	}
	return pk.key.SerializeCompressed(), nil
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(PublicKey)
	if !ok || o.key == nil || pk.key == nil {
		return false
	}
	return pk.key.IsEqual(o.key)
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string {
	buffer, err := pk.MarshalBinary()
	if err != nil {
		return "secp256k1:malformed_key"
	}
	return fmt.Sprintf("secp256k1:%x", buffer)
}

// Signature is the raw 64-byte (r || s) adapter over a decred ECDSA
// signature.
//
// - implements crypto.Signature
type Signature struct {
	raw [rawSignatureLength]byte
}

// NewSignature builds a Signature from a 64-byte raw (r || s) encoding.
func NewSignature(data []byte) (Signature, error) {
	if len(data) != rawSignatureLength {
		return Signature{}, xerrors.Errorf("expected %d bytes, got %d: %w", rawSignatureLength, len(data), ErrInvalidSignature)
	}
	var sig Signature
	copy(sig.raw[:], data)
	return sig, nil
}

// MarshalBinary implements crypto.Signature.
func (sig Signature) MarshalBinary() ([]byte, error) {
	out := make([]byte, rawSignatureLength)
	copy(out, sig.raw[:])
	return out, nil
}

// Equal implements crypto.Signature.
func (sig Signature) Equal(other crypto.Signature) bool {
	o, ok := other.(Signature)
	if !ok {
		return false
	}
	return sig.raw == o.raw
}

func (sig Signature) checkLowS() error {
	s := new(big.Int).SetBytes(sig.raw[rawKeyHalfLength:])
	if s.Cmp(curveOrderHalf) > 0 {
		return ErrSignatureNotLowS
	}
	return nil
}

// derSignature is the standard ASN.1 DER shape of an ECDSA signature,
// SEQUENCE { INTEGER r, INTEGER s }, used only to bridge between this
// package's fixed-width raw encoding and the decred ecdsa package's DER
// based Sign/Verify API.
type derSignature struct {
	R, S *big.Int
}

func (sig Signature) toDER() ([]byte, error) {
	r := new(big.Int).SetBytes(sig.raw[:rawKeyHalfLength])
	s := new(big.Int).SetBytes(sig.raw[rawKeyHalfLength:])
	der, err := asn1.Marshal(derSignature{R: r, S: s})
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal DER signature: %v", err)
	}
	return der, nil
}

func signatureFromDER(der []byte) (Signature, error) {
	var parsed derSignature
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return Signature{}, xerrors.Errorf("couldn't unmarshal DER signature: %v: %w", err, ErrInvalidSignature)
	}

	var sig Signature
	rBytes := parsed.R.Bytes()
	sBytes := parsed.S.Bytes()
	if len(rBytes) > rawKeyHalfLength || len(sBytes) > rawKeyHalfLength {
		return Signature{}, xerrors.Errorf("%w: component too large", ErrInvalidSignature)
	}
	copy(sig.raw[rawKeyHalfLength-len(rBytes):rawKeyHalfLength], rBytes)
	copy(sig.raw[rawSignatureLength-len(sBytes):], sBytes)
	return sig, nil
}

// Signer produces deterministic (RFC 6979) low-S secp256k1 ECDSA
// signatures under a single private key.
//
// - implements crypto.Signer
type Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSigner returns a new signer over a freshly generated random key,
// drawn from crypto.CryptographicRandomGenerator.
func NewSigner() (Signer, error) {
	var buf [rawKeyHalfLength]byte
	if _, err := (crypto.CryptographicRandomGenerator{}).Read(buf[:]); err != nil {
		return Signer{}, xerrors.Errorf("couldn't read random bytes: %v", err)
	}
	priv := secp256k1.PrivKeyFromBytes(buf[:])
	return Signer{priv: priv}, nil
}

// NewSignerFromPrivateKey returns a signer for an existing 32-byte
// private key scalar.
func NewSignerFromPrivateKey(data []byte) (Signer, error) {
	if len(data) != rawKeyHalfLength {
		return Signer{}, xerrors.Errorf("expected %d bytes, got %d: %w", rawKeyHalfLength, len(data), ErrInvalidPrivateKey)
	}
	priv := secp256k1.PrivKeyFromBytes(data)
	return Signer{priv: priv}, nil
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return PublicKey{key: s.priv.PubKey()}
}

// GetPrivateKeyBytes returns the 32-byte encoding of the signing key.
func (s Signer) GetPrivateKeyBytes() []byte {
	return s.priv.Serialize()
}

// Sign implements crypto.Signer. digest must already be a 32-byte
// message digest; this package never hashes on the caller's behalf.
func (s Signer) Sign(digest []byte) (crypto.Signature, error) {
	sig := ecdsa.Sign(s.priv, digest)
	raw, err := signatureFromDER(sig.Serialize())
	if err != nil {
		return nil, xerrors.Errorf("couldn't convert signature: %v", err)
	}
	return raw, nil
}

// Verifier checks secp256k1 ECDSA signatures, rejecting any signature
// that is not in canonical low-S form.
//
// - implements crypto.Verifier
type Verifier struct{}

// NewVerifier returns a new secp256k1 verifier.
func NewVerifier() Verifier {
	return Verifier{}
}

// Verify implements crypto.Verifier.
func (Verifier) Verify(pk crypto.PublicKey, digest []byte, signature crypto.Signature) error {
	pubkey, ok := pk.(PublicKey)
	if !ok {
		return xerrors.Errorf("invalid public key type '%T'", pk)
	}
	sig, ok := signature.(Signature)
	if !ok {
		return xerrors.Errorf("invalid signature type '%T'", signature)
	}

	if err := sig.checkLowS(); err != nil {
		return err
	}

	der, err := sig.toDER()
	if err != nil {
		return xerrors.Errorf("couldn't convert signature: %v", err)
	}

	ecSig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return xerrors.Errorf("couldn't parse signature: %v: %w", err, ErrInvalidSignature)
	}

	if !ecSig.Verify(digest, pubkey.key) {
		return ErrVerificationFailed
	}
	return nil
}
