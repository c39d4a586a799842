package gtv

import "golang.org/x/xerrors"

// Sentinel errors returned by the codec and value constructors. Callers
// should compare against these with xerrors.Is rather than string
// matching. The codec never retries, never logs, and never swallows a
// malformed-input error; every failure is returned to the caller.
var (
	ErrInvalidDecimal    = xerrors.New("gtv: invalid decimal literal")
	ErrDuplicateDictKey  = xerrors.New("gtv: duplicate dict key")
	ErrUnexpectedTag     = xerrors.New("gtv: unexpected tag")
	ErrTruncatedLength   = xerrors.New("gtv: truncated length")
	ErrNonMinimalLength  = xerrors.New("gtv: non-minimal length encoding")
	ErrNonMinimalInteger = xerrors.New("gtv: non-minimal integer encoding")
	ErrUnorderedDictKeys = xerrors.New("gtv: dict keys out of canonical order")
	ErrInvalidUTF8       = xerrors.New("gtv: invalid UTF-8 in text value")
	ErrTrailingBytes     = xerrors.New("gtv: trailing bytes after value")
	ErrDepthExceeded     = xerrors.New("gtv: maximum recursion depth exceeded")
	ErrTruncatedValue    = xerrors.New("gtv: truncated value content")
)
