package crypto

import "crypto/rand"

// CryptographicRandomGenerator is a cryptographically secure random
// generator, used by secp256k1.NewSigner to draw fresh private key
// material.
type CryptographicRandomGenerator struct{}

// Read fills all len(buffer) bytes of the given buffer as long as no
// error occurred.
func (crg CryptographicRandomGenerator) Read(buffer []byte) (int, error) {
	return rand.Read(buffer)
}
