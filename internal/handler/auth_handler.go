package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pos-service/internal/store"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
)

// AuthHandler serves login requests
type AuthHandler struct {
	store store.Store
}

// NewAuthHandler builds an auth handler backed by the user repository
func NewAuthHandler(st store.Store) *AuthHandler {
	return &AuthHandler{store: st}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordLoginAttempt()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid login request body", zap.Error(err))
		prometheus.RecordLoginError("invalid_request")
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Username == "" || req.Password == "" {
		prometheus.RecordLoginError("missing_credentials")
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	user, err := h.store.Users().FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if err == store.ErrNotFound {
			log.Warn("login attempt for unknown user", zap.String("username", req.Username))
			prometheus.RecordLoginError("user_not_found")
			return fail(c, http.StatusUnauthorized, "Invalid username or password")
		}
		log.Error("failed to look up user", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("login attempt with wrong password", zap.String("username", req.Username))
		prometheus.RecordLoginError("wrong_password")
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}

	token, err := jwtutil.GenerateToken(user.Username, user.ID, user.Role)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	log.Info("user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   token,
		"user": echo.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Health handles GET /api/health
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "OK", "message": "Backend is running"})
}
