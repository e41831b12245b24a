package helpers

import (
	"crypto/rand"
	"strings"
)

// OTP helpers

const otpAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// OTPLength is the number of characters in a generated one-time code.
const OTPLength = 6

// KeyLoginOTP is the Redis key holding the current OTP code for an email address.
// The email must already be normalized.
func KeyLoginOTP(email string) string {
	return "login:otp:" + email
}

// GenOTPCode generates a random code of OTPLength characters drawn uniformly
// from the 62-character alphanumeric alphabet.
func GenOTPCode() (string, error) {
	// Rejection sampling keeps the draw uniform over the 62 symbols.
	var sb strings.Builder
	sb.Grow(OTPLength)
	buf := make([]byte, 1)
	for sb.Len() < OTPLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if int(buf[0]) >= 62*(256/62) {
			continue
		}
		sb.WriteByte(otpAlphabet[int(buf[0])%62])
	}
	return sb.String(), nil
}
