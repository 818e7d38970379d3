package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JenilDobariya6132/shop/internal/billing"
	"github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/logger"
	"github.com/JenilDobariya6132/shop/prometheus"
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name    string `json:"name"`
	GSTID   string `json:"gst_id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ListCustomers returns the caller's customers, newest first
func ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var customers []model.Customer
	if err := database.GetDB().Where("user_id = ?", owner).Order("id DESC").Find(&customers).Error; err != nil {
		log.Error("Failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, customers)
}

// CreateCustomer creates a customer owned by the caller
func CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	customer := model.Customer{
		UserID:  owner,
		Name:    req.Name,
		GSTID:   req.GSTID,
		Phone:   req.Phone,
		Address: req.Address,
	}
	defer prometheus.TrackDBOperation("create_customer")(time.Now())
	if err := database.GetDB().Create(&customer).Error; err != nil {
		log.Error("Failed to create customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	log.Info("Customer created", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer the caller owns
func UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()
	var customer model.Customer
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&customer).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	customer.Name = req.Name
	customer.GSTID = req.GSTID
	customer.Phone = req.Phone
	customer.Address = req.Address
	if err := db.Save(&customer).Error; err != nil {
		log.Error("Failed to update customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer deletes a customer. With bills present the delete is
// blocked unless force=true, which cascades over the bills and their lines
// in one transaction.
func DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")
	force := strings.EqualFold(c.QueryParam("force"), "true")

	db := database.GetDB()

	var customer model.Customer
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&customer).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	var billCount int64
	db.Model(&model.Bill{}).Where("customer_id = ? AND user_id = ?", customer.ID, owner).Count(&billCount)

	if billCount > 0 && !force {
		return c.JSON(http.StatusConflict, echo.Map{"error": billing.ErrCustomerHasBills.Error()})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if billCount > 0 {
			var billIDs []uint
			if err := tx.Model(&model.Bill{}).
				Where("customer_id = ? AND user_id = ?", customer.ID, owner).
				Pluck("id", &billIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("bill_id IN ?", billIDs).Delete(&model.BillItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("customer_id = ? AND user_id = ?", customer.ID, owner).Delete(&model.Bill{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		log.Error("Failed to delete customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	log.Info("Customer deleted",
		zap.Uint("customer_id", customer.ID),
		zap.Int64("deleted_bills", billCount),
		zap.Bool("force", force))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "id": customer.ID, "deletedBills": billCount})
}
