package security

import "golang.org/x/crypto/bcrypt"

// DefaultCost matches the cost the account hashes were originally seeded with.
const DefaultCost = 12

// Hasher hashes and checks passwords with bcrypt. The zero value uses DefaultCost.
type Hasher struct {
	Cost int
}

func (h Hasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Check compares a bcrypt hash with a plaintext password.
func (h Hasher) Check(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// HashPassword hashes with DefaultCost.
func HashPassword(plain string) (string, error) {
	return Hasher{}.Hash(plain)
}

func CheckPassword(hash, plain string) error {
	return Hasher{}.Check(hash, plain)
}
