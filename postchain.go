// Package postchain is the root of a client library for the
// Chromia/Postchain blockchain platform. It exposes a GTV codec (package
// gtv), transaction assembly and signing (package txn), a secp256k1
// cryptographic adapter (package crypto/secp256k1), a persistent keystore
// (package keystore), and a reflective struct-to-GTV mapper (package
// gtvderive). This top-level package only holds process-wide concerns
// that don't belong to any single subsystem.
package postchain

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance. The codec and the
// Builder/Transaction signing path never log themselves — errors are
// always returned, never logged; the only log record this module emits
// is a debug-level summary from txn.Manager.Make — but callers wiring this module into a larger application (a REST
// transport, a CLI) are expected to share this logger across their own
// subsystems the same way.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)
