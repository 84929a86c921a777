// Package mock provides test doubles for veda interfaces using function fields.
package mock

import (
	"context"

	"github.com/vedaai/veda"
)

// Interface compliance checks.
var (
	_ veda.Transport = (*Transport)(nil)
	_ veda.Gate      = (*Gate)(nil)
	_ veda.Accounts  = (*Accounts)(nil)
	_ veda.Observer  = (*Observer)(nil)
)

// Transport is a test double for veda.Transport.
// Set OpenFn before calling Open.
type Transport struct {
	OpenFn func(ctx context.Context, query string) (veda.Stream, error)
}

// Open delegates to OpenFn.
func (t *Transport) Open(ctx context.Context, query string) (veda.Stream, error) {
	return t.OpenFn(ctx, query)
}

// Gate is a test double for veda.Gate.
type Gate struct {
	AuthorizeFn func(ctx context.Context) (veda.Identity, error)
}

// Authorize delegates to AuthorizeFn.
func (g *Gate) Authorize(ctx context.Context) (veda.Identity, error) {
	return g.AuthorizeFn(ctx)
}

// Accounts is a test double for veda.Accounts.
type Accounts struct {
	LoginFn    func(ctx context.Context, c veda.Credentials) (string, error)
	RegisterFn func(ctx context.Context, r veda.Registration) (string, error)
	LogoutFn   func(ctx context.Context) error
}

// Login delegates to LoginFn.
func (a *Accounts) Login(ctx context.Context, c veda.Credentials) (string, error) {
	return a.LoginFn(ctx, c)
}

// Register delegates to RegisterFn.
func (a *Accounts) Register(ctx context.Context, r veda.Registration) (string, error) {
	return a.RegisterFn(ctx, r)
}

// Logout delegates to LogoutFn.
func (a *Accounts) Logout(ctx context.Context) error {
	return a.LogoutFn(ctx)
}

// Observer records every document it is synced with. SyncFn, when set, is
// called after recording.
type Observer struct {
	Docs   []string
	SyncFn func(doc string)
}

// Sync records doc and delegates to SyncFn.
func (o *Observer) Sync(doc string) {
	o.Docs = append(o.Docs, doc)
	if o.SyncFn != nil {
		o.SyncFn(doc)
	}
}
