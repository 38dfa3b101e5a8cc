package storefront

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash. bcrypt salts internally, so
// hashing the same password twice never yields the same digest.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Any failure, including a malformed or truncated
// digest, degrades to the single mismatch error so callers cannot learn why
// verification failed.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// bcrypt distinguishes mismatches from undecodable digests; we
		// deliberately do not.
		return ErrMismatchedHashAndPassword
	}
	return nil
}
