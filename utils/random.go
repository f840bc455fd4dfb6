package utils

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// GenerateRandomString returns n random decimal digits.
func GenerateRandomString(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(digits)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		out[i] = digits[v.Int64()]
	}
	return string(out)
}
