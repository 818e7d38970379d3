package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/jwtutil"
	"github.com/JenilDobariya6132/shop/pkg/logger"
	"github.com/JenilDobariya6132/shop/prometheus"
)

// SignupRequest carries the new account plus the initial company profile.
type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Phone2      string `json:"phone2"`
	Email       string `json:"email"`
}

// Signup creates a new account and, best-effort, its company profile
func Signup(c echo.Context) error {
	log := logger.FromContext(c)

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid signup request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || len(req.Password) < 4 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password (min 4 chars) required"})
	}
	if req.CompanyName == "" || req.Address == "" || req.Phone == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Company name, address, phone and email are required"})
	}

	db := database.GetDB()

	var count int64
	db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already exists", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create account"})
	}

	user := model.User{Username: req.Username, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	// Best-effort: a failed profile insert must not abort the signup
	profile := model.CompanyProfile{
		UserID:      user.ID,
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Phone:       req.Phone,
		Phone2:      req.Phone2,
		Email:       req.Email,
	}
	if err := db.Create(&profile).Error; err != nil {
		log.Warn("Failed to create initial company profile", zap.Error(err))
	}

	token, err := jwtutil.GenerateToken(user.Username, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.RecordSignup()
	log.Info("Account created", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  echo.Map{"id": user.ID, "username": user.Username},
	})
}

// Login verifies credentials and issues a signed token
func Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		log.Warn("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Username, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.RecordLogin()
	log.Info("User logged in", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  echo.Map{"id": user.ID, "username": user.Username},
	})
}

// Me returns the authenticated account
func Me(c echo.Context) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	var user model.User
	if err := database.GetDB().First(&user, owner).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{"id": user.ID, "username": user.Username},
	})
}
