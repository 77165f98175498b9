package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/google/uuid"
)

// memStore is an in-memory AccountRepository. WithTx works on a copy of the
// tables and swaps it in only when fn succeeds.
type memStore struct {
	mu     sync.Mutex
	tables *tables
	inTx   bool

	// failSetRefresh makes SetRefreshToken report a vanished row.
	failSetRefresh bool
}

type loginEvent struct {
	accountID  string
	occurredAt time.Time
}

type tables struct {
	accounts    map[string]domain.Account
	credentials map[string]domain.Credential
	events      []loginEvent
}

func newMemStore() *memStore {
	return &memStore{tables: &tables{
		accounts:    map[string]domain.Account{},
		credentials: map[string]domain.Credential{},
	}}
}

func (t *tables) clone() *tables {
	cp := &tables{
		accounts:    make(map[string]domain.Account, len(t.accounts)),
		credentials: make(map[string]domain.Credential, len(t.credentials)),
		events:      append([]loginEvent(nil), t.events...),
	}
	for k, v := range t.accounts {
		cp.accounts[k] = v
	}
	for k, v := range t.credentials {
		cp.credentials[k] = v
	}
	return cp
}

func (m *memStore) WithTx(ctx context.Context, fn func(store domain.AccountStore) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memStore{tables: m.tables.clone(), inTx: true, failSetRefresh: m.failSetRefresh}
	if err := fn(tx); err != nil {
		return err
	}
	m.tables = tx.tables
	return nil
}

func (m *memStore) CreateAccountWithCredential(ctx context.Context, account domain.NewAccount, digest string) (string, error) {
	var id string
	err := m.WithTx(ctx, func(store domain.AccountStore) error {
		tx := store.(*memStore)
		for _, a := range tx.tables.accounts {
			if a.Email == account.Email {
				return autherror.ErrEmailAlreadyInUse
			}
		}
		id = uuid.NewString()
		now := time.Now()
		tx.tables.accounts[id] = domain.Account{
			ID:        id,
			Email:     account.Email,
			FullName:  account.FullName,
			Phone:     account.Phone,
			Gender:    account.Gender,
			TimeZone:  account.TimeZone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		tx.tables.credentials[id] = domain.Credential{AccountID: id, PasswordDigest: digest}
		tx.tables.events = append(tx.tables.events, loginEvent{accountID: id, occurredAt: now})
		return nil
	})
	return id, err
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range m.tables.accounts {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := m.tables.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memStore) GetDigest(ctx context.Context, accountID string) (string, error) {
	return m.tables.credentials[accountID].PasswordDigest, nil
}

func (m *memStore) GetRefreshToken(ctx context.Context, accountID string) (string, error) {
	cred, ok := m.tables.credentials[accountID]
	if !ok || cred.ActiveRefreshToken == nil {
		return "", nil
	}
	return *cred.ActiveRefreshToken, nil
}

func (m *memStore) SetRefreshToken(ctx context.Context, accountID string, token *string) error {
	cred, ok := m.tables.credentials[accountID]
	if !ok || m.failSetRefresh {
		return autherror.ErrAccountNotFound
	}
	if token != nil {
		v := *token
		token = &v
	}
	cred.ActiveRefreshToken = token
	m.tables.credentials[accountID] = cred
	return nil
}

func (m *memStore) UpdateTimeZone(ctx context.Context, accountID, timeZone string) error {
	a, ok := m.tables.accounts[accountID]
	if !ok {
		return autherror.ErrAccountNotFound
	}
	a.TimeZone = timeZone
	m.tables.accounts[accountID] = a
	return nil
}

func (m *memStore) counts() (accounts, credentials, events int) {
	return len(m.tables.accounts), len(m.tables.credentials), len(m.tables.events)
}
