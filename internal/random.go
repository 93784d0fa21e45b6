package internal

import (
	"crypto/rand"
	"math/big"
)

const (
	recoveryCodeLength   = 16
	recoveryCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewRecoveryCode draws a 16-character alphanumeric code with uniform
// per-character distribution.
func NewRecoveryCode() (string, error) {
	max := big.NewInt(int64(len(recoveryCodeAlphabet)))

	out := make([]byte, recoveryCodeLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = recoveryCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
