package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/session-auth/internal/logging"
	"github.com/google/uuid"
)

// UserService drives signup, login, logout and refresh. It holds no
// per-request state; everything shared between requests lives in the store.
type UserService struct {
	repo   domain.AccountRepository
	tokens TokenIssuer
	hasher PasswordHasher
	log    logging.Logger

	decoyOnce   sync.Once
	decoyDigest string
}

func NewUserService(repo domain.AccountRepository, tokens TokenIssuer, hasher PasswordHasher, log logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop()
	}
	return &UserService{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		log:    log,
	}
}

func (s *UserService) Signup(ctx context.Context, input dto.SignupInput) (*dto.AuthResponse, error) {
	if err := ValidateSignup(&input); err != nil {
		return nil, s.fail(ctx, "signup", err)
	}

	var resp *dto.AuthResponse
	err := s.repo.WithTx(ctx, func(store domain.AccountStore) error {
		existing, err := store.FindByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return autherror.ErrEmailAlreadyInUse
		}

		digest, err := s.hasher.Hash(input.Password)
		if err != nil {
			return fmt.Errorf("%w: hash password: %v", autherror.ErrWriteFailed, err)
		}

		accountID, err := store.CreateAccountWithCredential(ctx, domain.NewAccount{
			Email:    input.Email,
			FullName: input.FullName,
			Phone:    input.PhoneNumber,
			Gender:   input.Gender,
			TimeZone: input.TimeZone,
		}, digest)
		if err != nil {
			return err
		}

		pair, err := s.issueAndStore(ctx, store, domain.Claims{AccountID: accountID, Email: input.Email})
		if err != nil {
			return err
		}

		resp = &dto.AuthResponse{
			UserID:       accountID,
			Email:        input.Email,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "signup", err)
	}

	s.log.Info(ctx, "account registered", "op", "signup", "account_id", resp.UserID)
	return resp, nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	if err := ValidateLogin(input); err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	account, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	if account == nil {
		s.verifyDecoy(input.Password)
		return nil, s.fail(ctx, "login", autherror.ErrInvalidCredentials)
	}

	digest, err := s.repo.GetDigest(ctx, account.ID)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	if digest == "" {
		s.verifyDecoy(input.Password)
		return nil, s.fail(ctx, "login", autherror.ErrInvalidCredentials)
	}
	if !s.hasher.Verify(input.Password, digest) {
		return nil, s.fail(ctx, "login", autherror.ErrInvalidCredentials)
	}

	var pair *domain.TokenPair
	err = s.repo.WithTx(ctx, func(store domain.AccountStore) error {
		if err := store.UpdateTimeZone(ctx, account.ID, input.TimeZone); err != nil {
			return asWriteFailed("update time zone", err)
		}

		pair, err = s.issueAndStore(ctx, store, domain.Claims{AccountID: account.ID, Email: account.Email})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "login", err, "account_id", account.ID)
	}

	s.log.Info(ctx, "login succeeded", "op", "login", "account_id", account.ID)
	return &dto.AuthResponse{
		UserID:       account.ID,
		Email:        account.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token, revoking it regardless of its expiry.
func (s *UserService) Logout(ctx context.Context, input dto.LogoutInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return s.fail(ctx, "logout", autherror.NewValidationError("User ID is required"))
	}

	err := s.repo.WithTx(ctx, func(store domain.AccountStore) error {
		account, err := store.FindByID(ctx, input.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			return autherror.ErrAccountNotFound
		}

		if err := store.SetRefreshToken(ctx, account.ID, nil); err != nil {
			return asWriteFailed("clear refresh token", err)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "logout", err, "account_id", input.UserID)
	}

	s.log.Info(ctx, "logout succeeded", "op", "logout", "account_id", input.UserID)
	return nil
}

// Refresh mints a new access token from the claims of a still-current refresh
// token. The refresh token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.RefreshResponse, error) {
	if input.RefreshToken == "" {
		return nil, s.fail(ctx, "refresh", autherror.NewValidationError("Refresh token is required"))
	}
	if input.UserID == "" {
		return nil, s.fail(ctx, "refresh", autherror.NewValidationError("User ID is required"))
	}

	// Signature and expiry first; a bad token never reaches the store.
	claims, err := s.tokens.Verify(input.RefreshToken, domain.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}

	if claims.AccountID != input.UserID {
		return nil, s.fail(ctx, "refresh", autherror.ErrUserIDMismatch, "account_id", claims.AccountID)
	}

	stored, err := s.repo.GetRefreshToken(ctx, claims.AccountID)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err, "account_id", claims.AccountID)
	}
	if stored == "" {
		return nil, s.fail(ctx, "refresh", autherror.ErrRefreshTokenMissing, "account_id", claims.AccountID)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(input.RefreshToken)) != 1 {
		return nil, s.fail(ctx, "refresh", autherror.ErrRefreshTokenRevoked, "account_id", claims.AccountID)
	}

	accessToken, err := s.tokens.IssueAccessToken(domain.Claims{AccountID: claims.AccountID, Email: claims.Email})
	if err != nil {
		return nil, s.fail(ctx, "refresh", fmt.Errorf("%w: issue access token: %v", autherror.ErrWriteFailed, err))
	}

	return &dto.RefreshResponse{AccessToken: accessToken}, nil
}

// CurrentAccount returns the profile of the identity attached by the access-token middleware.
func (s *UserService) CurrentAccount(ctx context.Context) (*dto.AccountOutput, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, s.fail(ctx, "current account", autherror.ErrUnauthorized)
	}

	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, s.fail(ctx, "current account", err, "account_id", claims.AccountID)
	}
	if account == nil {
		return nil, s.fail(ctx, "current account", autherror.ErrAccountNotFound, "account_id", claims.AccountID)
	}

	return &dto.AccountOutput{
		UserID:    account.ID,
		Email:     account.Email,
		FullName:  account.FullName,
		Phone:     account.Phone,
		Gender:    account.Gender,
		TimeZone:  account.TimeZone,
		CreatedAt: account.CreatedAt,
	}, nil
}

// issueAndStore signs a fresh pair and makes its refresh token the only live one.
func (s *UserService) issueAndStore(ctx context.Context, store domain.AccountStore, claims domain.Claims) (*domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: issue tokens: %v", autherror.ErrWriteFailed, err)
	}

	if err := store.SetRefreshToken(ctx, claims.AccountID, &pair.RefreshToken); err != nil {
		return nil, asWriteFailed("store refresh token", err)
	}
	return pair, nil
}

// verifyDecoy pays for one password verification against a digest made at the
// hasher's cost, so a login for an unknown email takes as long as a wrong password.
func (s *UserService) verifyDecoy(password string) {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn(context.Background(), "decoy digest unavailable", "error", err.Error())
			return
		}
		s.decoyDigest = digest
	})
	if s.decoyDigest != "" {
		_ = s.hasher.Verify(password, s.decoyDigest)
	}
}

// fail logs err and narrows it to the error taxonomy. Anything outside the
// taxonomy becomes ErrWriteFailed so driver errors never reach the caller.
func (s *UserService) fail(ctx context.Context, op string, err error, args ...any) error {
	args = append([]any{"op", op, "code", autherror.Code(err)}, args...)

	if autherror.IsKnown(err) && !errors.Is(err, autherror.ErrWriteFailed) {
		s.log.Info(ctx, op+" rejected", args...)
		return err
	}

	s.log.Error(ctx, op+" failed", append(args, "error", err.Error())...)
	return autherror.ErrWriteFailed
}

// asWriteFailed reports a vanished row during a write as a storage failure.
func asWriteFailed(op string, err error) error {
	if errors.Is(err, autherror.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s affected no rows", autherror.ErrWriteFailed, op)
	}
	return err
}
