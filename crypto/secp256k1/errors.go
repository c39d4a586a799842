package secp256k1

import "golang.org/x/xerrors"

// Sentinel errors returned by this package's constructors and verifier.
var (
	ErrInvalidPublicKey   = xerrors.New("secp256k1: invalid public key encoding")
	ErrInvalidPrivateKey  = xerrors.New("secp256k1: invalid private key encoding")
	ErrInvalidSignature   = xerrors.New("secp256k1: invalid signature encoding")
	ErrSignatureNotLowS   = xerrors.New("secp256k1: signature is not in canonical low-S form")
	ErrVerificationFailed = xerrors.New("secp256k1: signature verification failed")
)
