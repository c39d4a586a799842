package gtvderive

import "golang.org/x/xerrors"

// Sentinel errors returned by the reflective mapper.
var (
	ErrUnsupportedType = xerrors.New("gtvderive: unsupported Go type")
	ErrInvalidTag      = xerrors.New("gtvderive: invalid gtv struct tag")
	ErrNonStringMapKey = xerrors.New("gtvderive: map keys must be strings")
)
