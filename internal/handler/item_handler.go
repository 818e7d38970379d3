package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/internal/upload"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/logger"
)

// UploadDir is where item photos and company logos are written. Set from
// config at startup; tests leave it at the default.
var UploadDir = "./public"

// ItemRequest defines the structure for item creation/update requests
type ItemRequest struct {
	Name      string  `json:"name"`
	Size      float64 `json:"size"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	PhotoData string  `json:"photo_data"`
}

// ListItems returns the caller's catalog items, newest first. Shared
// default items stay billable but are not listed here.
func ListItems(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var items []model.Item
	if err := database.GetDB().Where("user_id = ?", owner).Order("id DESC").Find(&items).Error; err != nil {
		log.Error("Failed to list items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem creates a catalog item owned by the caller
func CreateItem(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()
	item := model.Item{
		UserID:   &owner,
		Name:     req.Name,
		Size:     req.Size,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if err := db.Create(&item).Error; err != nil {
		log.Error("Failed to create item", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	// Photo storage is best-effort: a decode or write failure never fails
	// the item itself.
	if upload.IsDataURL(req.PhotoData) {
		name := fmt.Sprintf("item_%d", item.ID)
		if url, err := upload.SaveDataURL(UploadDir, "item_photos", name, req.PhotoData); err == nil {
			item.PhotoURL = url
			if err := db.Model(&item).Update("photo_url", url).Error; err != nil {
				log.Warn("Failed to store photo url", zap.Error(err))
			}
		} else {
			log.Warn("Failed to save item photo", zap.Error(err))
		}
	}

	log.Info("Item created", zap.Uint("item_id", item.ID), zap.String("name", item.Name))
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem updates an item the caller owns
func UpdateItem(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()
	var item model.Item
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&item).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
	}

	item.Name = req.Name
	item.Size = req.Size
	item.Price = req.Price
	item.Quantity = req.Quantity

	if upload.IsDataURL(req.PhotoData) {
		name := fmt.Sprintf("item_%d", item.ID)
		if url, err := upload.SaveDataURL(UploadDir, "item_photos", name, req.PhotoData); err == nil {
			item.PhotoURL = url
		} else {
			log.Warn("Failed to save item photo", zap.Error(err))
		}
	}

	if err := db.Save(&item).Error; err != nil {
		log.Error("Failed to update item", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem deletes an item the caller owns
func DeleteItem(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	result := database.GetDB().Where("id = ? AND user_id = ?", id, owner).Delete(&model.Item{})
	if result.Error != nil {
		log.Error("Failed to delete item", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
