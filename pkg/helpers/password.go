package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the credential at the default cost.
// The hash embeds its own salt and cost, so it is the only thing stored.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

// CompareHashAndPassword reports whether plain matches the stored hash.
func CompareHashAndPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
