package service

//go:generate mockgen -destination=../../mocks/mock_token_issuer.go -package=mocks github.com/AnthoniusHendriyanto/session-auth/internal/auth/service TokenIssuer

import (
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "session-auth"

type TokenIssuer interface {
	IssueAccessToken(claims domain.Claims) (string, error)
	IssueRefreshToken(claims domain.Claims) (string, error)
	IssuePair(claims domain.Claims) (*domain.TokenPair, error)
	Verify(token string, class domain.TokenClass) (*domain.Claims, error)
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	now func() time.Time
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
		now:                time.Now,
	}
}

// WithClock returns a copy of ts that reads time from now.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *ts
	cp.now = now
	return &cp
}

func (ts *TokenService) IssueAccessToken(claims domain.Claims) (string, error) {
	return ts.sign(claims, domain.AccessToken)
}

func (ts *TokenService) IssueRefreshToken(claims domain.Claims) (string, error) {
	return ts.sign(claims, domain.RefreshToken)
}

func (ts *TokenService) IssuePair(claims domain.Claims) (*domain.TokenPair, error) {
	accessToken, err := ts.IssueAccessToken(claims)
	if err != nil {
		return nil, err
	}

	refreshToken, err := ts.IssueRefreshToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Verify checks signature, class and expiry. It returns ErrTokenExpired or
// ErrTokenMalformed so callers can branch without inspecting jwt errors.
func (ts *TokenService) Verify(tokenString string, class domain.TokenClass) (*domain.Claims, error) {
	secret, _, err := ts.keyFor(class)
	if err != nil {
		return nil, autherror.ErrTokenMalformed
	}

	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(class.String()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.clock()),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, autherror.ErrTokenMalformed
	}

	if !token.Valid || claims.UserID == "" {
		return nil, autherror.ErrTokenMalformed
	}

	return &domain.Claims{
		AccountID: claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (ts *TokenService) sign(claims domain.Claims, class domain.TokenClass) (string, error) {
	secret, expiry, err := ts.keyFor(class)
	if err != nil {
		return "", err
	}

	now := ts.clock()()
	jwtClaims := JWTCustomClaims{
		UserID: claims.AccountID,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{class.String()},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims).SignedString([]byte(secret))
}

func (ts *TokenService) keyFor(class domain.TokenClass) (string, time.Duration, error) {
	switch class {
	case domain.AccessToken:
		return ts.AccessTokenSecret, ts.AccessTokenExpiry, nil
	case domain.RefreshToken:
		return ts.RefreshTokenSecret, ts.RefreshTokenExpiry, nil
	default:
		return "", 0, fmt.Errorf("unknown token class %d", class)
	}
}

func (ts *TokenService) clock() func() time.Time {
	if ts.now == nil {
		return time.Now
	}
	return ts.now
}
