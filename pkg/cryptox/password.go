package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP-recommended interactive profile).
const (
	argonMemory      uint32 = 64 * 1024
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword generates a PHC-format Argon2id hash string including salt and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argonIterations,
		argonMemory,
		argonParallelism,
		argonKeyLength,
	)

	// PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. It recomputes the hash with the parameters embedded in the encoded
// string, so parameter upgrades don't invalidate stored hashes.
func VerifyPassword(password, encodedHash string) error {
	var (
		version    int
		mem, iters uint32
		par        uint8
	)

	var b64Salt, b64Hash string
	n, err := fmt.Sscanf(
		encodedHash,
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		&version, &mem, &iters, &par, &b64Hash,
	)
	if err != nil || n != 5 {
		return errors.New("cryptox: invalid hash format")
	}

	// Sscanf stops %s at whitespace, not '$'; split salt and hash manually.
	for i := range len(b64Hash) {
		if b64Hash[i] == '$' {
			b64Salt = b64Hash[:i]
			b64Hash = b64Hash[i+1:]
			break
		}
	}
	if b64Salt == "" {
		return errors.New("cryptox: invalid hash format")
	}
	if version != 19 {
		return errors.New("cryptox: unsupported argon2 version")
	}

	salt, err := base64.RawStdEncoding.DecodeString(b64Salt)
	if err != nil {
		return errors.New("cryptox: invalid hash salt")
	}
	expected, err := base64.RawStdEncoding.DecodeString(b64Hash)
	if err != nil {
		return errors.New("cryptox: invalid hash digest")
	}

	got := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expected)))
	if subtle.ConstantTimeCompare(got, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
