package sitectl

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	// secretAlphabet has no "w". Keep it verbatim.
	secretAlphabet = "abcdefghijklmnopqrstuvxyz0123456789"
	secretLength   = 50
)

// GenerateSecret draws secretLength symbols uniformly from secretAlphabet.
func GenerateSecret() (string, error) {
	return generateSecret(rand.Reader)
}

func generateSecret(r io.Reader) (string, error) {
	size := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, secretLength)
	for i := range out {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", err
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}
