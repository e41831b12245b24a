package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantMsg string
	}{
		{name: "valid", pw: "Testpass1", wantMsg: ""},
		{name: "valid long", pw: "Sup3rSecretPhrase", wantMsg: ""},
		{name: "too short", pw: "Short1", wantMsg: "Password must be at least 9 characters long."},
		{name: "no uppercase", pw: "alllower123", wantMsg: "Password must contain at least one uppercase letter."},
		{name: "no digit", pw: "NoDigitsHere", wantMsg: "Password must contain at least one digit."},
		{name: "empty", pw: "", wantMsg: "Password must be at least 9 characters long."},
		// Length is checked first even when later rules would also fail.
		{name: "short and lowercase", pw: "abc", wantMsg: "Password must be at least 9 characters long."},
		// Uppercase is checked before digit.
		{name: "no uppercase no digit", pw: "lowercaseonly", wantMsg: "Password must contain at least one uppercase letter."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.pw)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "password", fe.Field)
			assert.Equal(t, tt.wantMsg, fe.Message)
		})
	}
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("first_name", ""))
	assert.NoError(t, Name("first_name", "Alice"))
	assert.NoError(t, Name("last_name", "Ólafsdóttir"))

	var fe *FieldError
	err := Name("first_name", "Alice3")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "first_name", fe.Field)

	assert.Error(t, Name("last_name", "O'Brien"))
	assert.Error(t, Name("last_name", "van Dyk"))
}
