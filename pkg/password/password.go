package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for password storage
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	keyLen       = 64
	saltLen      = 16
	storedFormat = "%s.%s" // "<hex hash>.<hex salt>"
)

// Hash derives a scrypt hash of the password and returns it in
// "<hash>.<salt>" form suitable for storage.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	derived, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return fmt.Sprintf(storedFormat, hex.EncodeToString(derived), hex.EncodeToString(salt)), nil
}

// Verify reports whether the supplied password matches the stored
// "<hash>.<salt>" value. Comparison is constant-time.
func Verify(plain, stored string) (bool, error) {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return false, fmt.Errorf("stored password is not in hash.salt format")
	}

	hash, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("invalid stored hash: %w", err)
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("invalid stored salt: %w", err)
	}

	derived, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return false, fmt.Errorf("failed to derive key: %w", err)
	}

	return subtle.ConstantTimeCompare(hash, derived) == 1, nil
}
