package handler

import (
	"errors"
	"fmt"
	"net/http"
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

// BillRequest defines the structure for bill creation/update requests.
// GSTPercent defaults to 18 when omitted; Discount is an absolute currency
// amount, not a percentage.
type BillRequest struct {
	BillNumber string                `json:"bill_number"`
	BillDate   string                `json:"bill_date"`
	CustomerID uint                  `json:"customer_id"`
	Items      []billing.LineRequest `json:"items"`
	GSTPercent *float64              `json:"gst_percent"`
	Discount   float64               `json:"discount"`
	PaidAmount float64               `json:"paid_amount"`
}

// BillView is a bill row joined with its customer name for display
type BillView struct {
	ID            uint    `json:"id"`
	BillNumber    string  `json:"bill_number"`
	BillDate      string  `json:"bill_date"`
	CustomerID    uint    `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	Subtotal      float64 `json:"subtotal"`
	GSTPercent    float64 `json:"gst_percent"`
	GSTAmount     float64 `json:"gst_amount"`
	Discount      float64 `json:"discount"`
	GrandTotal    float64 `json:"grand_total"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
}

// BillDetailView extends BillView with the customer display fields
// returned by GET /bills/:id
type BillDetailView struct {
	BillView
	GSTID   string `json:"gst_id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// BillLineView is one resolved line item of a bill detail response
type BillLineView struct {
	ItemID   uint    `json:"item_id"`
	Name     string  `json:"name"`
	Size     float64 `json:"size"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// SearchBillRow is one row of GET /bills/search, with the derived status
type SearchBillRow struct {
	ID            uint    `json:"id"`
	BillNumber    string  `json:"bill_number"`
	BillDate      string  `json:"bill_date"`
	CustomerName  string  `json:"customer_name"`
	GrandTotal    float64 `json:"grand_total"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
	Status        string  `json:"status"`
}

const billViewSelect = `bills.id, bills.bill_number, bills.bill_date, bills.customer_id,
	customers.name AS customer_name, bills.subtotal, bills.gst_percent, bills.gst_amount,
	bills.discount, bills.grand_total, bills.paid_amount, bills.pending_amount`

// visibleItem scopes an item lookup to the two-tier visibility rule:
// owned by the caller OR shared default (no owner). This is the only way
// bill lines may resolve catalog items.
func visibleItem(db *gorm.DB, owner uint, itemID uint) *gorm.DB {
	return db.Model(&model.Item{}).Where("id = ? AND (user_id = ? OR user_id IS NULL)", itemID, owner)
}

func billStatusCode(err error) int {
	switch {
	case errors.Is(err, billing.ErrCustomerNotFound),
		errors.Is(err, billing.ErrBillNotFound),
		errors.Is(err, billing.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrEmptyItems),
		errors.Is(err, billing.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fetchBillView(db *gorm.DB, owner uint, billID uint) (*BillView, error) {
	var view BillView
	err := db.Model(&model.Bill{}).
		Select(billViewSelect).
		Joins("JOIN customers ON bills.customer_id = customers.id").
		Where("bills.id = ? AND bills.user_id = ?", billID, owner).
		Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, billing.ErrBillNotFound
	}
	return &view, nil
}

// resolveLines loads every requested item through the visibility rule and
// hands the catalog prices to the computation engine.
func resolveLines(tx *gorm.DB, owner uint, reqs []billing.LineRequest) ([]billing.Line, float64, error) {
	if len(reqs) == 0 {
		return nil, 0, billing.ErrEmptyItems
	}
	prices := make(map[uint]float64, len(reqs))
	for _, r := range reqs {
		var item model.Item
		if err := visibleItem(tx, owner, r.ItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: item %d", billing.ErrItemNotFound, r.ItemID)
			}
			return nil, 0, err
		}
		prices[item.ID] = item.Price
	}
	return billing.BuildLines(reqs, prices)
}

// ListBills returns the caller's bills, newest first, optionally filtered
// to one customer
func ListBills(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	query := database.GetDB().Model(&model.Bill{}).
		Select(billViewSelect).
		Joins("JOIN customers ON bills.customer_id = customers.id").
		Where("bills.user_id = ?", owner)

	if customerID := c.QueryParam("customer_id"); customerID != "" {
		query = query.Where("bills.customer_id = ?", customerID)
	}

	var bills []BillView
	if err := query.Order("bills.id DESC").Scan(&bills).Error; err != nil {
		log.Error("Failed to list bills", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if bills == nil {
		bills = []BillView{}
	}
	return c.JSON(http.StatusOK, bills)
}

// SearchBills filters bills by customer name, bill number, date range,
// derived status and phone. Capped at 500 rows, most recent first.
func SearchBills(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	query := database.GetDB().Model(&model.Bill{}).
		Select(`bills.id, bills.bill_number, bills.bill_date, customers.name AS customer_name,
			bills.grand_total, bills.paid_amount, bills.pending_amount,
			CASE
				WHEN bills.pending_amount = 0 THEN 'Paid'
				WHEN bills.paid_amount = 0 THEN 'Unpaid'
				ELSE 'Partial'
			END AS status`).
		Joins("JOIN customers ON bills.customer_id = customers.id").
		Where("bills.user_id = ?", owner)

	if name := c.QueryParam("name"); name != "" {
		query = query.Where("customers.name LIKE ?", "%"+name+"%")
	}
	if billNumber := c.QueryParam("bill_number"); billNumber != "" {
		query = query.Where("bills.bill_number LIKE ?", "%"+billNumber+"%")
	}
	if from := c.QueryParam("from"); from != "" {
		query = query.Where("bills.bill_date >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("bills.bill_date <= ?", to)
	}
	if phone := c.QueryParam("phone"); phone != "" {
		query = query.Where("customers.phone LIKE ?", "%"+phone+"%")
	}
	// Status is derived from the payment amounts, never stored
	switch c.QueryParam("status") {
	case billing.StatusPaid:
		query = query.Where("bills.pending_amount = 0")
	case billing.StatusUnpaid:
		query = query.Where("bills.paid_amount = 0")
	case billing.StatusPartial:
		query = query.Where("bills.pending_amount > 0 AND bills.paid_amount > 0")
	}

	var rows []SearchBillRow
	if err := query.Order("bills.bill_date DESC, bills.id DESC").Limit(500).Scan(&rows).Error; err != nil {
		log.Error("Failed to search bills", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if rows == nil {
		rows = []SearchBillRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GetBill returns a bill with customer display fields and line items
func GetBill(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	db := database.GetDB()

	var detail BillDetailView
	err := db.Model(&model.Bill{}).
		Select(billViewSelect+", customers.gst_id, customers.phone, customers.address").
		Joins("JOIN customers ON bills.customer_id = customers.id").
		Where("bills.id = ? AND bills.user_id = ?", id, owner).
		Scan(&detail).Error
	if err != nil {
		log.Error("Failed to load bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if detail.ID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Bill not found"})
	}

	var items []BillLineView
	err = db.Model(&model.BillItem{}).
		Select("bill_items.item_id, items.name, bill_items.size, bill_items.quantity, bill_items.price, bill_items.total").
		Joins("JOIN items ON bill_items.item_id = items.id").
		Where("bill_items.bill_id = ?", detail.ID).
		Scan(&items).Error
	if err != nil {
		log.Error("Failed to load bill items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if items == nil {
		items = []BillLineView{}
	}

	return c.JSON(http.StatusOK, echo.Map{"bill": detail, "items": items})
}

// CreateBill validates ownership and quantities, computes totals and
// persists the bill with its line items in one transaction
func CreateBill(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)

	var req BillRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": billing.ErrEmptyItems.Error()})
	}

	gstPercent := 18.0
	if req.GSTPercent != nil {
		gstPercent = *req.GSTPercent
	}
	billNumber := req.BillNumber
	if billNumber == "" {
		billNumber = fmt.Sprintf("BILL-%d", time.Now().UnixMilli())
	}
	billDate := req.BillDate
	if billDate == "" {
		billDate = time.Now().UTC().Format("2006-01-02")
	}

	db := database.GetDB()
	var bill model.Bill

	defer prometheus.TrackDBOperation("create_bill")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.Where("id = ? AND user_id = ?", req.CustomerID, owner).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.ErrCustomerNotFound
			}
			return err
		}

		lines, subtotal, err := resolveLines(tx, owner, req.Items)
		if err != nil {
			return err
		}
		totals := billing.ComputeTotals(subtotal, gstPercent, req.Discount, req.PaidAmount)

		bill = model.Bill{
			UserID:        owner,
			BillNumber:    billNumber,
			BillDate:      billDate,
			CustomerID:    customer.ID,
			Subtotal:      totals.Subtotal,
			GSTPercent:    gstPercent,
			GSTAmount:     totals.GSTAmount,
			Discount:      req.Discount,
			GrandTotal:    totals.GrandTotal,
			PaidAmount:    totals.PaidAmount,
			PendingAmount: totals.PendingAmount,
		}
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}

		for _, line := range lines {
			billItem := model.BillItem{
				BillID:   bill.ID,
				ItemID:   line.ItemID,
				Size:     line.Size,
				Quantity: line.Quantity,
				Price:    line.Price,
				Total:    line.Total,
			}
			if err := tx.Create(&billItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("Failed to create bill", zap.Error(err))
		return c.JSON(billStatusCode(err), echo.Map{"error": err.Error()})
	}

	view, err := fetchBillView(db, owner, bill.ID)
	if err != nil {
		log.Error("Failed to load created bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.RecordBillCreated()
	log.Info("Bill created",
		zap.Uint("bill_id", bill.ID),
		zap.String("bill_number", bill.BillNumber),
		zap.Float64("grand_total", bill.GrandTotal))
	return c.JSON(http.StatusCreated, echo.Map{"bill": view})
}

// UpdateBill recomputes a bill from a full replacement line-item set. Old
// lines are deleted and the new set inserted in the same transaction.
func UpdateBill(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	var req BillRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": billing.ErrEmptyItems.Error()})
	}

	gstPercent := 18.0
	if req.GSTPercent != nil {
		gstPercent = *req.GSTPercent
	}

	db := database.GetDB()
	var bill model.Bill

	defer prometheus.TrackDBOperation("update_bill")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.ErrBillNotFound
			}
			return err
		}

		// Full overwrite of the line set, not a diff
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&model.BillItem{}).Error; err != nil {
			return err
		}

		lines, subtotal, err := resolveLines(tx, owner, req.Items)
		if err != nil {
			return err
		}
		totals := billing.ComputeTotals(subtotal, gstPercent, req.Discount, req.PaidAmount)

		if req.BillNumber != "" {
			bill.BillNumber = req.BillNumber
		}
		if req.BillDate != "" {
			bill.BillDate = req.BillDate
		}
		if req.CustomerID != 0 {
			var customer model.Customer
			if err := tx.Where("id = ? AND user_id = ?", req.CustomerID, owner).First(&customer).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return billing.ErrCustomerNotFound
				}
				return err
			}
			bill.CustomerID = customer.ID
		}
		bill.Subtotal = totals.Subtotal
		bill.GSTPercent = gstPercent
		bill.GSTAmount = totals.GSTAmount
		bill.Discount = req.Discount
		bill.GrandTotal = totals.GrandTotal
		bill.PaidAmount = totals.PaidAmount
		bill.PendingAmount = totals.PendingAmount
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		for _, line := range lines {
			billItem := model.BillItem{
				BillID:   bill.ID,
				ItemID:   line.ItemID,
				Size:     line.Size,
				Quantity: line.Quantity,
				Price:    line.Price,
				Total:    line.Total,
			}
			if err := tx.Create(&billItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("Failed to update bill", zap.Error(err))
		return c.JSON(billStatusCode(err), echo.Map{"error": err.Error()})
	}

	view, err := fetchBillView(db, owner, bill.ID)
	if err != nil {
		log.Error("Failed to load updated bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.RecordBillUpdated()
	log.Info("Bill updated", zap.Uint("bill_id", bill.ID))
	return c.JSON(http.StatusOK, echo.Map{"bill": view})
}

// UpdateBillPayment records a payment against the stored grand total
// without touching line items or other scalar fields
func UpdateBillPayment(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	var req struct {
		PaidAmount float64 `json:"paid_amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.GetDB()
	var bill model.Bill
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&bill).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Bill not found"})
	}

	paid := billing.ClampPaid(req.PaidAmount, bill.GrandTotal)
	updates := map[string]interface{}{
		"paid_amount":    paid,
		"pending_amount": bill.GrandTotal - paid,
	}
	if err := db.Model(&bill).Updates(updates).Error; err != nil {
		log.Error("Failed to record payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	view, err := fetchBillView(db, owner, bill.ID)
	if err != nil {
		log.Error("Failed to load bill after payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.RecordPayment()
	log.Info("Payment recorded",
		zap.Uint("bill_id", bill.ID),
		zap.Float64("paid_amount", paid))
	return c.JSON(http.StatusOK, echo.Map{"bill": view})
}

// DeleteBill removes a bill and all its line items in one transaction
func DeleteBill(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	id := c.Param("id")

	db := database.GetDB()
	var bill model.Bill
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&bill).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Bill not found"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&model.BillItem{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", owner).Delete(&bill).Error
	})
	if err != nil {
		log.Error("Failed to delete bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.RecordBillDeleted()
	log.Info("Bill deleted", zap.Uint("bill_id", bill.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
