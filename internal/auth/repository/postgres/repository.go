package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresRepository struct {
	db   DBTX
	inTx bool
}

var _ domain.AccountRepository = (*PostgresRepository)(nil)

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WithTx runs fn inside one transaction. Nested calls reuse the outer transaction.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(store domain.AccountStore) error) error {
	return r.inTransaction(ctx, func(q DBTX) error {
		return fn(&PostgresRepository{db: q, inTx: true})
	})
}

func (r *PostgresRepository) inTransaction(ctx context.Context, fn func(q DBTX) error) error {
	if r.inTx {
		return fn(r.db)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", autherror.ErrWriteFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", autherror.ErrWriteFailed, err)
	}
	return nil
}

// CreateAccountWithCredential inserts the account, its credential and the first
// login event as one unit and returns the new account id.
func (r *PostgresRepository) CreateAccountWithCredential(ctx context.Context, account domain.NewAccount, digest string) (string, error) {
	id := uuid.NewString()

	err := r.inTransaction(ctx, func(q DBTX) error {
		tag, err := q.Exec(ctx, `
			INSERT INTO accounts (id, email, full_name, phone, gender, time_zone)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, account.Email, account.FullName, account.Phone, account.Gender, account.TimeZone)
		if err := checkWrite("insert account", tag, err); err != nil {
			return err
		}

		tag, err = q.Exec(ctx, `
			INSERT INTO credentials (account_id, password_digest)
			VALUES ($1, $2)
		`, id, digest)
		if err := checkWrite("insert credential", tag, err); err != nil {
			return err
		}

		tag, err = q.Exec(ctx, `
			INSERT INTO login_events (account_id, occurred_at)
			VALUES ($1, $2)
		`, id, time.Now().UTC())
		return checkWrite("insert login event", tag, err)
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, full_name, phone, gender, time_zone, created_at, updated_at
		FROM accounts
		WHERE email = $1
		LIMIT 1;
	`
	return r.scanAccount(r.db.QueryRow(ctx, query, email), "get account by email")
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		// Not a uuid, so no row can match.
		return nil, nil
	}

	query := `
		SELECT id, email, full_name, phone, gender, time_zone, created_at, updated_at
		FROM accounts
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanAccount(r.db.QueryRow(ctx, query, id), "get account by id")
}

func (r *PostgresRepository) scanAccount(row pgx.Row, op string) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.Phone, &a.Gender, &a.TimeZone, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", autherror.ErrWriteFailed, op, err)
	}
	return &a, nil
}

func (r *PostgresRepository) GetDigest(ctx context.Context, accountID string) (string, error) {
	cred, err := r.getCredential(ctx, accountID, "get password digest")
	if err != nil || cred == nil {
		return "", err
	}
	return cred.PasswordDigest, nil
}

func (r *PostgresRepository) GetRefreshToken(ctx context.Context, accountID string) (string, error) {
	cred, err := r.getCredential(ctx, accountID, "get refresh token")
	if err != nil || cred == nil || cred.ActiveRefreshToken == nil {
		return "", err
	}
	return *cred.ActiveRefreshToken, nil
}

// getCredential returns nil, nil when the account has no credential row.
func (r *PostgresRepository) getCredential(ctx context.Context, accountID, op string) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.QueryRow(ctx, `
		SELECT account_id, password_digest, active_refresh_token
		FROM credentials
		WHERE account_id = $1
	`, accountID).Scan(&cred.AccountID, &cred.PasswordDigest, &cred.ActiveRefreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", autherror.ErrWriteFailed, op, err)
	}
	return &cred, nil
}

// SetRefreshToken overwrites the stored refresh token; nil clears it.
func (r *PostgresRepository) SetRefreshToken(ctx context.Context, accountID string, token *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE credentials SET active_refresh_token = $1 WHERE account_id = $2`, token, accountID)
	return checkUpdate("set refresh token", tag, err)
}

func (r *PostgresRepository) UpdateTimeZone(ctx context.Context, accountID, timeZone string) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET time_zone = $1, updated_at = now() WHERE id = $2`, timeZone, accountID)
	return checkUpdate("update time zone", tag, err)
}

// checkWrite turns a driver error or a zero-row insert into a taxonomy error.
func checkWrite(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return autherror.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("%w: %s: %v", autherror.ErrWriteFailed, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s affected no rows", autherror.ErrWriteFailed, op)
	}
	return nil
}

func checkUpdate(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", autherror.ErrWriteFailed, op, err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrAccountNotFound
	}
	return nil
}
