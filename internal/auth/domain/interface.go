package domain

//go:generate mockgen -destination=../../mocks/mock_account_repository.go -package=mocks github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain AccountRepository

import "context"

// AccountStore is the persisted relation between accounts, their credential
// digest and their single active refresh token.
//
// Lookups return a zero value with a nil error when nothing matches.
type AccountStore interface {
	CreateAccountWithCredential(ctx context.Context, account NewAccount, digest string) (string, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	GetDigest(ctx context.Context, accountID string) (string, error)
	GetRefreshToken(ctx context.Context, accountID string) (string, error)
	SetRefreshToken(ctx context.Context, accountID string, token *string) error
	UpdateTimeZone(ctx context.Context, accountID, timeZone string) error
}

// AccountRepository adds a transaction boundary to AccountStore. Every store
// call made through the handle passed to fn commits or rolls back together.
type AccountRepository interface {
	AccountStore
	WithTx(ctx context.Context, fn func(store AccountStore) error) error
}
