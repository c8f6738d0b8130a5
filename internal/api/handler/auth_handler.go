package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/api/middleware"
	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=80"`
	LastName  string `json:"lastName"  validate:"required,max=80"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type authResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expiresIn"`
	User      *domain.Profile `json:"user"`
}

type checkResponse struct {
	Valid bool            `json:"valid"`
	User  *domain.Profile `json:"user,omitempty"`
	Error string          `json:"error,omitempty"`
}

func newAuthResponse(s *ports.Session) authResponse {
	p := s.User.Profile()
	return authResponse{Token: s.Token, ExpiresIn: s.ExpiresIn, User: &p}
}

// Register creates a new user account and returns a credential for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newAuthResponse(sess))
}

// Login authenticates a user and returns a signed credential.
//
// @Summary      Login
// @Description  rememberMe selects a 7 day credential instead of 1 hour
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, newAuthResponse(sess))
}

// Check reports whether the presented credential is live at this service.
//
// @Summary      Check credential
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer token"
// @Success      200            {object}  checkResponse
// @Failure      401            {object}  checkResponse
// @Router       /api/auth/check [get]
func (h *AuthHandler) Check(c echo.Context) error {
	raw, err := middleware.BearerToken(c.Request())
	if err == nil {
		var user *domain.User
		user, err = h.authService.Check(c.Request().Context(), raw)
		if err == nil {
			p := user.Profile()
			return c.JSON(http.StatusOK, checkResponse{Valid: true, User: &p})
		}
	}

	msg := "invalid or expired token"
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		msg = "token not provided or unknown user"
	case errors.Is(err, domain.ErrStaleGeneration):
		msg = "session ended by service restart"
	case !isCredentialError(err):
		return err
	}
	return c.JSON(http.StatusUnauthorized, checkResponse{Valid: false, Error: msg})
}

// Me returns the authenticated principal's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUnauthenticated
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}

func isCredentialError(err error) bool {
	return errors.Is(err, domain.ErrMalformedCredential) ||
		errors.Is(err, domain.ErrInvalidSignature) ||
		errors.Is(err, domain.ErrExpired) ||
		errors.Is(err, domain.ErrStaleGeneration) ||
		errors.Is(err, domain.ErrUnauthenticated)
}
