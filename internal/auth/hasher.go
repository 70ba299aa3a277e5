package auth

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes account passwords. The zero value uses bcrypt's
// default cost.
type BcryptHasher struct {
	Cost int
}

// Hash derives a bcrypt hash for storage.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash.
func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
