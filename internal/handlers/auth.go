package handlers

import (
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and profile requests
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterAuthRoutes registers user routes. The Firebase exchange is only mounted when a verifier is configured.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/profile", h.Profile, auth)
	if h.users.FederatedLoginEnabled() {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Register handles local user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Registration successful! Welcome aboard.", result)
}

// Login authenticates with an email or username and a password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Login successful. Welcome back!", result)
}

// Profile returns the caller's profile
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.users.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Profile fetched successfully.", profile)
}

// FirebaseLogin exchanges a Firebase ID token for a local token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.users.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Login successful. Welcome back!", result)
}
