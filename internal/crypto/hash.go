package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for new password records
const (
	// PBKDF2Iterations is the iteration count written into new records
	PBKDF2Iterations = 100000
	// PBKDF2KeyLen is the derived key length in bytes (256 bits)
	PBKDF2KeyLen = 32
	// PasswordSaltSize is the per-record salt length in bytes
	PasswordSaltSize = 16
)

// HashFormat identifies the scheme of a stored password record
type HashFormat int

const (
	FormatUnknown HashFormat = iota
	FormatPBKDF2
	FormatBcrypt
)

// HashPassword derives a PBKDF2-HMAC-SHA256 record for password.
// The record is "iterations$salt_hex$key_hex".
func HashPassword(password string) (string, error) {
	salt := make([]byte, PasswordSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, PBKDF2KeyLen, sha256.New)

	return strconv.Itoa(PBKDF2Iterations) + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// VerifyPassword checks password against a stored record of any supported
// format. Malformed records never match.
func VerifyPassword(password, record string) bool {
	switch DetectFormat(record) {
	case FormatBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(record), []byte(password)) == nil
	case FormatPBKDF2:
		iterations, salt, want, ok := parsePBKDF2(record)
		if !ok {
			return false
		}
		got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
		return subtle.ConstantTimeCompare(got, want) == 1
	default:
		return false
	}
}

// DetectFormat classifies a stored record by its structure
func DetectFormat(record string) HashFormat {
	if strings.HasPrefix(record, "$2a$") || strings.HasPrefix(record, "$2b$") || strings.HasPrefix(record, "$2y$") {
		return FormatBcrypt
	}
	if _, _, _, ok := parsePBKDF2(record); ok {
		return FormatPBKDF2
	}
	return FormatUnknown
}

// NeedsRehash reports whether a valid record should be replaced with a fresh
// HashPassword result: legacy bcrypt records and PBKDF2 records below the
// current iteration count.
func NeedsRehash(record string) bool {
	switch DetectFormat(record) {
	case FormatBcrypt:
		return true
	case FormatPBKDF2:
		iterations, _, _, _ := parsePBKDF2(record)
		return iterations < PBKDF2Iterations
	default:
		return false
	}
}

func parsePBKDF2(record string) (int, []byte, []byte, bool) {
	parts := strings.Split(record, "$")
	if len(parts) != 3 {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}

	key, err := hex.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}

// GenerateToken returns n cryptographically random bytes, hex-encoded
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
