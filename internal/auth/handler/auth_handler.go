package handler

import (
	"strings"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/session-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *service.UserService
	tokens      service.TokenIssuer
}

func NewAuthHandler(userService *service.UserService, tokens service.TokenIssuer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input dto.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	resp, err := h.userService.Signup(c.UserContext(), input)
	if err != nil {
		return respondError(c, opSignup, err)
	}

	return respondOK(c, fiber.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	resp, err := h.userService.Login(c.UserContext(), input)
	if err != nil {
		return respondError(c, opLogin, err)
	}

	return respondOK(c, fiber.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	if err := h.userService.Logout(c.UserContext(), input); err != nil {
		return respondError(c, opLogout, err)
	}

	return respondOK(c, fiber.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	resp, err := h.userService.Refresh(c.UserContext(), input)
	if err != nil {
		return respondError(c, opRefresh, err)
	}

	return respondOK(c, fiber.StatusOK, "Token refreshed successfully", resp)
}

// Me returns the profile of the caller identified by RequireAccessToken.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, err := h.userService.CurrentAccount(c.UserContext())
	if err != nil {
		return respondError(c, opMe, err)
	}

	return respondOK(c, fiber.StatusOK, "Account retrieved", account)
}

// RequireAccessToken verifies the bearer access token and attaches its claims
// to the request context.
func (h *AuthHandler) RequireAccessToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return respondError(c, opAuth, unauthorized("No authorization header provided"))
	}

	scheme, token, _ := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !strings.EqualFold(scheme, "Bearer") || token == "" {
		return respondError(c, opAuth, unauthorized("No token provided"))
	}

	claims, err := h.tokens.Verify(token, domain.AccessToken)
	if err != nil {
		return respondError(c, opAuth, err)
	}

	c.SetUserContext(service.ContextWithClaims(c.UserContext(), claims))
	return c.Next()
}

func unauthorized(msg string) error {
	return &authError{msg: msg}
}

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }

func (e *authError) Unwrap() error { return autherror.ErrUnauthorized }
