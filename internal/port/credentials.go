package port

import "github.com/rl1809/bookstore/internal/core/domain"

type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare returns an error when password does not match hash
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)

	// Verify decodes a token into the identity it was issued for
	Verify(token string) (domain.Identity, error)
}
