package service

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
)

const (
	minFullNameLength = 3
	minPasswordLength = 6
	phoneNumberLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidTimeZone reports whether tz names an IANA zone.
func IsValidTimeZone(tz string) bool {
	if tz == "" || tz == "Local" || strings.TrimSpace(tz) != tz {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// ValidateSignup checks shape only and normalises an absent phone number to "".
func ValidateSignup(in *dto.SignupInput) error {
	if in.Email == "" || in.Password == "" || in.FullName == "" || in.Gender == "" || in.TimeZone == "" {
		return autherror.NewValidationError("Email, password, full name, gender, and time zone are required")
	}

	if utf8.RuneCountInString(in.FullName) < minFullNameLength {
		return autherror.NewValidationError("Full name must be at least 3 characters")
	}

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.PhoneNumber != "" && !isPhoneNumber(in.PhoneNumber) {
		return autherror.NewValidationError("Phone number must be 10 digits")
	}

	if err := validateEmail(in.Email); err != nil {
		return err
	}

	if err := validatePassword(in.Password); err != nil {
		return err
	}

	if !IsValidTimeZone(in.TimeZone) {
		return autherror.NewValidationError("Invalid time zone")
	}

	return nil
}

func ValidateLogin(in dto.LoginInput) error {
	if in.Email == "" || in.Password == "" || in.TimeZone == "" {
		return autherror.NewValidationError("Email, password, and time zone are required")
	}

	if err := validateEmail(in.Email); err != nil {
		return err
	}

	if len(in.Password) > MaxPasswordBytes {
		return autherror.NewValidationError("Password must be at most 72 bytes")
	}

	if !IsValidTimeZone(in.TimeZone) {
		return autherror.NewValidationError("Invalid time zone")
	}

	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return autherror.NewValidationError("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return autherror.NewValidationError("Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return autherror.NewValidationError("Password must be at most 72 bytes")
	}
	return nil
}

func isPhoneNumber(s string) bool {
	if len(s) != phoneNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
