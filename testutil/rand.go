package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAccount returns an account identifier in the dotted form the
// staking ledger stores as stake record keys, e.g. "kirsten-wolf.node0".
func RandomAccount() string {
	name := strings.ToLower(gofakeit.Username())
	return fmt.Sprintf("%s.%s", name, gofakeit.DomainSuffix())
}
