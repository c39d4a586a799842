package keystore

import "golang.org/x/xerrors"

// Sentinel errors returned by the keystore.
var (
	ErrNotFound  = xerrors.New("keystore: identity not found")
	ErrCorrupted = xerrors.New("keystore: stored record failed its checksum")
	ErrExists    = xerrors.New("keystore: identity already exists")
)
