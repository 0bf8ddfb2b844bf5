package credential

import "golang.org/x/crypto/bcrypt"

// Credential represents the password credential of a profile
type Credential struct {
	ProfileID string
	Hash      []byte
}

// HashPassword derives a bcrypt hash from a plaintext password
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Verify checks a plaintext password against the stored hash
func (credential *Credential) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(credential.Hash, []byte(password)) == nil
}
