package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// generateOTP returns a 6-digit code drawn uniformly from [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
