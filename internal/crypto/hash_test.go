package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "admin123"},
		{name: "empty password", password: ""},
		{name: "unicode password", password: "пароль-密码-🔑"},
		{name: "long password", password: strings.Repeat("x", 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := HashPassword(tt.password)
			require.NoError(t, err)

			assert.Regexp(t, "^100000\\$[a-f0-9]{32}\\$[a-f0-9]{64}$", record)
			assert.Equal(t, FormatPBKDF2, DetectFormat(record))
			assert.True(t, VerifyPassword(tt.password, record))
			assert.False(t, NeedsRehash(record))
		})
	}
}

func TestHashPassword_SaltIsRandom(t *testing.T) {
	first, err := HashPassword("admin123")
	require.NoError(t, err)
	second, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, strings.Split(first, "$")[1], strings.Split(second, "$")[1])

	assert.True(t, VerifyPassword("admin123", first))
	assert.True(t, VerifyPassword("admin123", second))
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	record, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.False(t, VerifyPassword("admin124", record))
	assert.False(t, VerifyPassword("", record))
	assert.False(t, VerifyPassword("ADMIN123", record))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{name: "empty", record: ""},
		{name: "plain text", record: "admin123"},
		{name: "too few fields", record: "100000$abcd"},
		{name: "too many fields", record: "100000$abcd$abcd$abcd"},
		{name: "non numeric iterations", record: "lots$abcd$abcd"},
		{name: "zero iterations", record: "0$abcd$abcd"},
		{name: "negative iterations", record: "-5$abcd$abcd"},
		{name: "bad salt hex", record: "1000$zz$abcd"},
		{name: "bad key hex", record: "1000$abcd$xyz"},
		{name: "empty salt", record: "1000$$abcd"},
		{name: "empty key", record: "1000$abcd$"},
		{name: "truncated bcrypt", record: "$2b$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, VerifyPassword("admin123", tt.record))
			})
			assert.False(t, NeedsRehash(tt.record) && DetectFormat(tt.record) == FormatUnknown)
		})
	}
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	record := string(legacy)
	require.True(t, strings.HasPrefix(record, "$2a$"))

	assert.Equal(t, FormatBcrypt, DetectFormat(record))
	assert.True(t, VerifyPassword("admin123", record))
	assert.False(t, VerifyPassword("wrong", record))
	assert.True(t, NeedsRehash(record))

	for _, prefix := range []string{"$2b$", "$2y$"} {
		assert.Equal(t, FormatBcrypt, DetectFormat(prefix+record[4:]), prefix)
	}
}

func TestNeedsRehash_LowIterations(t *testing.T) {
	// 1000 iterations, a record written before the cost was raised
	record := "1000$00112233445566778899aabbccddeeff$" + strings.Repeat("ab", 32)

	assert.Equal(t, FormatPBKDF2, DetectFormat(record))
	assert.True(t, NeedsRehash(record))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.Regexp(t, "^[a-f0-9]{64}$", a)
	assert.NotEqual(t, a, b)
}
