package veda

import "context"

// Identity is the authenticated user as reported by the server.
type Identity struct {
	Username string
}

// Gate authorizes access before any StreamSession may be created.
// Authorize returns ErrUnauthorized when the server rejects the current
// credentials.
type Gate interface {
	Authorize(ctx context.Context) (Identity, error)
}

// Credentials are the fields of the login form.
type Credentials struct {
	Email    string
	Password string
}

// Registration are the fields of the registration form.
type Registration struct {
	Username string
	Email    string
	Password string
}

// Accounts submits the account forms. Login and Register return the
// server's confirmation message.
type Accounts interface {
	Login(ctx context.Context, c Credentials) (string, error)
	Register(ctx context.Context, r Registration) (string, error)
	Logout(ctx context.Context) error
}

// GuestName is displayed for an identity the server reports without a
// username.
const GuestName = "Guest"

// DisplayName returns the username, or GuestName when it is empty.
func (i Identity) DisplayName() string {
	if i.Username == "" {
		return GuestName
	}
	return i.Username
}
