package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// ResetCodeLength is the number of digits in a one-time reset code.
const ResetCodeLength = 6

// GenerateCode returns a random numeric code. Each digit is drawn
// independently and uniformly from 0-9, so leading zeros are possible
// and must be preserved as part of the string.
func GenerateCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < ResetCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate code digit: %w", err)
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}
