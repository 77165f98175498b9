package handler

import (
	"errors"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
)

const (
	opSignup  = "signup"
	opLogin   = "login"
	opLogout  = "logout"
	opRefresh = "refresh"
	opMe      = "me"
	opAuth    = "auth"
)

// writeFailedMessages keeps driver detail out of responses.
var writeFailedMessages = map[string]string{
	opSignup:  "Failed to register user",
	opLogin:   "Login failed",
	opLogout:  "Logout failed",
	opRefresh: "Token refresh failed",
	opMe:      "Failed to load account",
	opAuth:    "Token verification failed",
}

// StatusFor maps an error kind to an HTTP status. NotFound is 401 while
// logging in so the response does not reveal which emails exist.
func StatusFor(op string, err error) int {
	switch {
	case errors.Is(err, autherror.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return fiber.StatusConflict
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrUnauthorized),
		errors.Is(err, autherror.ErrTokenExpired),
		errors.Is(err, autherror.ErrTokenMalformed):
		return fiber.StatusUnauthorized
	case errors.Is(err, autherror.ErrAccountNotFound):
		if op == opLogin {
			return fiber.StatusUnauthorized
		}
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(op string, err error) string {
	switch {
	case errors.Is(err, autherror.ErrTokenExpired):
		if op == opRefresh {
			return "Refresh token has expired"
		}
		return "Token has expired"
	case errors.Is(err, autherror.ErrTokenMalformed):
		if op == opRefresh {
			return "Invalid refresh token"
		}
		return "Invalid token"
	case errors.Is(err, autherror.ErrAccountNotFound) && op == opLogin:
		return autherror.ErrInvalidCredentials.Error()
	case autherror.IsKnown(err) && !errors.Is(err, autherror.ErrWriteFailed):
		return err.Error()
	default:
		return writeFailedMessages[op]
	}
}

func codeFor(op string, err error) string {
	if errors.Is(err, autherror.ErrAccountNotFound) && op == opLogin {
		return autherror.Code(autherror.ErrInvalidCredentials)
	}
	return autherror.Code(err)
}

func respondError(c *fiber.Ctx, op string, err error) error {
	return c.Status(StatusFor(op, err)).JSON(dto.Response{
		Status:  dto.StatusError,
		Code:    codeFor(op, err),
		Message: messageFor(op, err),
	})
}

func respondOK(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.Response{
		Status:  dto.StatusOK,
		Code:    "OK",
		Message: message,
		Data:    data,
	})
}

func badBody(c *fiber.Ctx) error {
	return respondError(c, "", autherror.NewValidationError("Invalid request body"))
}
