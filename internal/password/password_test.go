package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := New(bcrypt.MinCost)

	tests := []struct {
		name      string
		plaintext string
		attempt   string
		want      bool
	}{
		{name: "matching password", plaintext: "secret123", attempt: "secret123", want: true},
		{name: "wrong password", plaintext: "secret123", attempt: "secret124", want: false},
		{name: "empty password", plaintext: "", attempt: "", want: true},
		{name: "empty password wrong attempt", plaintext: "", attempt: "x", want: false},
		{name: "case sensitive", plaintext: "Secret", attempt: "secret", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(tt.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, digest)
			assert.Equal(t, tt.want, h.Verify(digest, tt.attempt))
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	h := New(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify(first, "same"))
	assert.True(t, h.Verify(second, "same"))
}

func TestHasher_TooLong(t *testing.T) {
	h := New(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestHasher_MalformedDigestPanics(t *testing.T) {
	h := New(bcrypt.MinCost)

	assert.Panics(t, func() {
		h.Verify("not-a-bcrypt-digest", "secret")
	})
}

func TestNew_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, New(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, New(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, New(bcrypt.MinCost).cost)
}
