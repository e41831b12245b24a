package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOTPCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Len(t, code, OTPLength)
		for _, r := range code {
			isAlnum := (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
			assert.True(t, isAlnum, "unexpected character %q in code %q", r, code)
		}
		seen[code] = true
	}
	// 50 draws from a 62^6 space should not collide into a single value.
	assert.Greater(t, len(seen), 1)
}

func TestKeyLoginOTP(t *testing.T) {
	assert.Equal(t, "login:otp:a@x.com", KeyLoginOTP("a@x.com"))
}
