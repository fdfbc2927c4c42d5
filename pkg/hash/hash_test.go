package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHasher(t *testing.T) {
	tests := []struct {
		algorithm HashAlgorithm
		want      string
	}{
		{MD5, "5d41402abc4b2a76b9719d911017c592"},
		{SHA1, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{SHA256, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}

	for _, tc := range tests {
		t.Run(string(tc.algorithm), func(t *testing.T) {
			h := NewContentHasher(tc.algorithm)

			got, err := h.Calculate([]byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			fromReader, err := h.CalculateReader(strings.NewReader("hello"))
			require.NoError(t, err)
			assert.Equal(t, got, fromReader)

			ok, err := h.Verify([]byte("hello"), tc.want)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestContentHasher_Unsupported(t *testing.T) {
	_, err := NewContentHasher("crc32").Calculate([]byte("x"))
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hashed)

	assert.NoError(t, CheckPassword(hashed, "password"))
	assert.ErrorIs(t, CheckPassword(hashed, "wrong"), ErrPasswordMismatch)
}
