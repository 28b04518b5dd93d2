package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateInput is a partial update over email and password only.
type UpdateInput struct {
	Email    *string
	Password *string
}

func (u UpdateInput) IsEmpty() bool {
	return u.Email == nil && u.Password == nil
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}
