package txn

import "golang.org/x/xerrors"

// Sentinel errors returned by transaction assembly and signing.
var (
	ErrInvalidKey       = xerrors.New("txn: invalid key")
	ErrSignerMismatch   = xerrors.New("txn: signer's public key reports equal to an existing signer but marshals differently")
	ErrAlreadyFinalized = xerrors.New("txn: transaction is already finalized")
	ErrSigningBackend   = xerrors.New("txn: signing backend failed")
	ErrIncomplete       = xerrors.New("txn: transaction is missing one or more signatures")
)
