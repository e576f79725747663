package session

import (
	"golang.org/x/crypto/bcrypt"

	"leadflow/access"
)

// User is an account in the system. Secret holds the stored credential in
// whatever form the manager's verifier produced (bcrypt hash by default).
type User struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Role        access.Role `json:"role"`
	Secret      string      `json:"-"`
	WeeklyGoal  int         `json:"weeklyGoal"`
}

// Session bundles the signed token and the authenticated user.
type Session struct {
	Token string
	User  User
}

// CredentialVerifier abstracts how passwords are stored and checked, so
// legacy plaintext accounts can coexist with hashed ones during migration.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(secret, password string) bool
}

// BcryptVerifier stores bcrypt hashes. This is the default.
type BcryptVerifier struct{}

func (BcryptVerifier) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptVerifier) Verify(secret, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
}

// PlainVerifier stores passwords as-is. It exists only to read accounts
// imported from the legacy system and must not be used for new deployments.
type PlainVerifier struct{}

func (PlainVerifier) Hash(password string) (string, error) { return password, nil }

func (PlainVerifier) Verify(secret, password string) bool { return secret == password }
