package auth

import (
	"errors"
	"time"
)

// User is an account record. PasswordHash never leaves this package.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries optional replacement values for a user. Empty fields
// are left unchanged; Password, when set, is re-hashed.
type UserUpdate struct {
	Username string
	Role     string
	FullName string
	Password *string
}

// ErrInvalidCredentials indicates login failure. The message is deliberately
// identical for unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrUserNotFound indicates no user with the given id.
var ErrUserNotFound = errors.New("auth: user not found")

// ErrDuplicateUsername indicates the username is already taken.
var ErrDuplicateUsername = errors.New("auth: username already exists")

// ErrSelfDeletion forbids deleting one's own account.
var ErrSelfDeletion = errors.New("auth: cannot delete your own account")

// ErrInvalidToken indicates a missing, malformed or expired bearer token.
var ErrInvalidToken = errors.New("auth: token is not valid")
