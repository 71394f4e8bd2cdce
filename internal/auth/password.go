package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor. bcrypt salts every hash itself, so
// two hashes of the same password never match byte-for-byte.
const hashCost = 10

// maxPasswordBytes is bcrypt's input limit; longer input is silently
// truncated by some implementations, so it is rejected up front.
const maxPasswordBytes = 72

// ErrPasswordInvalid is returned when a plaintext password is empty or
// exceeds bcrypt's input limit.
var ErrPasswordInvalid = errors.New("password must be between 1 and 72 bytes")

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plain string) (string, error) {
	if err := validatePassword(plain); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain maps to hashed. A mismatch is
// (false, nil); only primitive failures such as a malformed hash produce
// an error.
func VerifyPassword(plain, hashed string) (bool, error) {
	if err := validatePassword(plain); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

func validatePassword(plain string) error {
	if plain == "" || len(plain) > maxPasswordBytes {
		return ErrPasswordInvalid
	}
	return nil
}
