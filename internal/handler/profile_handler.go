package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/internal/upload"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/logger"
)

// ProfileRequest defines the structure for company profile save requests
type ProfileRequest struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Phone2      string `json:"phone2"`
	Email       string `json:"email"`
	LogoData    string `json:"logo_data"`
}

// GetProfile returns the caller's company profile, or null when absent
func GetProfile(c echo.Context) error {
	owner, _ := middleware.OwnerID(c)

	var profile model.CompanyProfile
	err := database.GetDB().Where("user_id = ?", owner).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, nil)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, profile)
}

// SaveProfile creates or updates the caller's company profile
func SaveProfile(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CompanyName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Company name is required"})
	}

	logoURL := ""
	if upload.IsDataURL(req.LogoData) {
		name := fmt.Sprintf("user_%d", owner)
		if url, err := upload.SaveDataURL(UploadDir, "company_logos", name, req.LogoData); err == nil {
			logoURL = url
		} else {
			log.Warn("Failed to save company logo", zap.Error(err))
		}
	}

	db := database.GetDB()
	var profile model.CompanyProfile
	err := db.Where("user_id = ?", owner).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = model.CompanyProfile{
			UserID:      owner,
			CompanyName: req.CompanyName,
			Address:     req.Address,
			Phone:       req.Phone,
			Phone2:      req.Phone2,
			Email:       req.Email,
			LogoURL:     logoURL,
		}
		if err := db.Create(&profile).Error; err != nil {
			log.Error("Failed to create company profile", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, profile)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	profile.CompanyName = req.CompanyName
	profile.Address = req.Address
	profile.Phone = req.Phone
	profile.Phone2 = req.Phone2
	profile.Email = req.Email
	if logoURL != "" {
		profile.LogoURL = logoURL
	}
	if err := db.Save(&profile).Error; err != nil {
		log.Error("Failed to update company profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, profile)
}
