package handler

import (
	"net/http"

	"freshbulk-service/internal/model"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/jwtutil"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/pkg/password"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register creates a new customer account
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}

	// Check for existing accounts
	existing, err := storage.Get().GetUserByUsername(req.Username)
	if err != nil {
		log.Error("Failed to look up username", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if existing != nil {
		log.Warn("Username already taken", zap.String("username", req.Username))
		prometheus.RecordAuthError("username_taken")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	}
	existing, err = storage.Get().GetUserByEmail(req.Email)
	if err != nil {
		log.Error("Failed to look up email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if existing != nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     model.RoleCustomer,
	}

	created, err := storage.Get().CreateUser(&user)
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("User registered", zap.String("username", created.Username), zap.String("email", created.Email))
	return c.JSON(http.StatusCreated, created)
}

// Login verifies credentials and issues a JWT
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := storage.Get().GetUserByUsername(req.Username)
	if err != nil {
		log.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if user == nil {
		log.Warn("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ok, err := password.Verify(req.Password, user.Password)
	if err != nil || !ok {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated caller's account
func Me(c echo.Context) error {
	log := logger.FromContext(c)

	userID, _ := c.Get("user_id").(uint)
	user, err := storage.Get().GetUserByID(userID)
	if err != nil {
		log.Error("Failed to load user", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
