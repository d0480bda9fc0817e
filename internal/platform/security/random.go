package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomDigits returns n uniformly distributed decimal digits,
// zero-padded. Used for email verification and reset codes.
func RandomDigits(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
