package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/service"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	Accounts *service.Accounts
}

func NewAuthHandler(a *service.Accounts) *AuthHandler {
	return &AuthHandler{Accounts: a}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Signup registers a user and returns a token right away.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	name := req.Name
	if name == "" {
		name = req.Username
	}

	token, err := h.Accounts.Register(c.Request().Context(), name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooLong):
			return fail(c, http.StatusBadRequest, "password must be at most 72 bytes")
		case errors.Is(err, service.ErrInvalidInput):
			return fail(c, http.StatusBadRequest, "email and password are required")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token})
}

// Login exchanges credentials for a token.  Bad credentials answer 200 with
// success=false, which is what storefront clients check.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	token, err := h.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fail(c, http.StatusOK, "Wrong Email Id or Password")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token})
}
