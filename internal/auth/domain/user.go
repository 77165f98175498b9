package domain

import "time"

type Account struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	Gender    string
	TimeZone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount is the profile captured at signup, before an id is assigned.
type NewAccount struct {
	Email    string
	FullName string
	Phone    string
	Gender   string
	TimeZone string
}

// Credential is one-to-one with Account. A nil ActiveRefreshToken means the
// account has no live refresh token.
type Credential struct {
	AccountID          string
	PasswordDigest     string
	ActiveRefreshToken *string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type TokenClass int

const (
	AccessToken TokenClass = iota
	RefreshToken
)

func (c TokenClass) String() string {
	switch c {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the identity carried inside a signed token.
type Claims struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
}
