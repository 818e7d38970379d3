package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/logger"
	"github.com/JenilDobariya6132/shop/prometheus"
)

// MonthlyReportRow is one (customer, item, bill) combination with the
// bill's paid/pending amounts allocated proportionally onto the item.
type MonthlyReportRow struct {
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	ItemID       uint    `json:"item_id"`
	ItemName     string  `json:"item_name"`
	BillID       uint    `json:"bill_id"`
	BillNumber   string  `json:"bill_number"`
	BillDate     string  `json:"bill_date"`
	Quantity     float64 `json:"quantity"`
	Amount       float64 `json:"amount"`
	PaidAlloc    float64 `json:"paid_alloc"`
	PendingAlloc float64 `json:"pending_alloc"`
}

// OutstandingRow is one customer's aggregate balance, zero for customers
// with no bills in range.
type OutstandingRow struct {
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	GSTID        string  `json:"gst_id"`
	BillsCount   int64   `json:"bills_count"`
	TotalGrand   float64 `json:"total_grand"`
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
}

// OutstandingBillRow is one bill in the per-customer outstanding detail
type OutstandingBillRow struct {
	ID            uint    `json:"id"`
	BillNumber    string  `json:"bill_number"`
	BillDate      string  `json:"bill_date"`
	GrandTotal    float64 `json:"grand_total"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// monthRange returns the half-open UTC interval covering one month
func monthRange(year, month int) (from, to time.Time) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// MonthlyReport aggregates bills by customer, item and bill for one month,
// allocating each bill's paid/pending amounts proportionally across lines
func MonthlyReport(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	prometheus.RecordReportQuery("monthly")

	now := time.Now().UTC()
	month := int(now.Month())
	if v := c.QueryParam("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = n
		}
	}
	year := now.Year()
	if v := c.QueryParam("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}

	from, to := monthRange(year, month)
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")

	var rows []MonthlyReportRow
	err := database.GetDB().Model(&model.Bill{}).
		Select(`customers.id AS customer_id, customers.name AS customer_name,
			items.id AS item_id, items.name AS item_name,
			bills.id AS bill_id, bills.bill_number, bills.bill_date,
			SUM(bill_items.quantity) AS quantity,
			SUM(bill_items.total) AS amount,
			CASE WHEN bills.grand_total > 0
				THEN SUM(bill_items.total) / bills.grand_total * bills.paid_amount
				ELSE 0 END AS paid_alloc,
			CASE WHEN bills.grand_total > 0
				THEN SUM(bill_items.total) / bills.grand_total * bills.pending_amount
				ELSE 0 END AS pending_alloc`).
		Joins("JOIN customers ON bills.customer_id = customers.id").
		Joins("JOIN bill_items ON bill_items.bill_id = bills.id").
		Joins("JOIN items ON bill_items.item_id = items.id").
		Where("bills.bill_date >= ? AND bills.bill_date < ? AND bills.user_id = ?", fromStr, toStr, owner).
		Group(`customers.id, customers.name, items.id, items.name, bills.id,
			bills.bill_number, bills.bill_date, bills.grand_total, bills.paid_amount, bills.pending_amount`).
		Order("customer_name ASC, item_name ASC, bills.bill_date ASC, bills.id ASC").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to build monthly report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if rows == nil {
		rows = []MonthlyReportRow{}
	}

	var quantity, amount, paid, pending float64
	for _, r := range rows {
		quantity += r.Quantity
		amount += r.Amount
		paid += r.PaidAlloc
		pending += r.PendingAlloc
	}

	log.Info("Monthly report built",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("rows", len(rows)))
	return c.JSON(http.StatusOK, echo.Map{
		"month": month,
		"year":  year,
		"range": echo.Map{
			"from": fromStr,
			// inclusive display bound: last day of the month
			"to": to.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		"rows": rows,
		"totals": echo.Map{
			"quantity": round2(quantity),
			"amount":   round2(amount),
			"paid":     round2(paid),
			"pending":  round2(pending),
		},
	})
}

// OutstandingSummary returns one aggregate row per customer, including
// customers with zero bills, ordered by pending balance
func OutstandingSummary(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	prometheus.RecordReportQuery("outstanding")

	// Date bounds belong in the join condition so bill-less customers
	// still produce a zero row.
	joinClause := "LEFT JOIN bills ON bills.customer_id = customers.id AND bills.user_id = ?"
	joinArgs := []interface{}{owner}
	if from := c.QueryParam("from"); from != "" {
		joinClause += " AND bills.bill_date >= ?"
		joinArgs = append(joinArgs, from)
	}
	if to := c.QueryParam("to"); to != "" {
		joinClause += " AND bills.bill_date <= ?"
		joinArgs = append(joinArgs, to)
	}

	query := database.GetDB().Model(&model.Customer{}).
		Select(`customers.id AS customer_id, customers.name AS customer_name,
			customers.phone, customers.gst_id,
			COUNT(bills.id) AS bills_count,
			COALESCE(SUM(bills.grand_total), 0) AS total_grand,
			COALESCE(SUM(bills.paid_amount), 0) AS total_paid,
			COALESCE(SUM(bills.pending_amount), 0) AS total_pending`).
		Joins(joinClause, joinArgs...).
		Where("customers.user_id = ?", owner)

	if search := c.QueryParam("search"); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(customers.name) LIKE ? OR LOWER(customers.phone) LIKE ? OR LOWER(customers.gst_id) LIKE ?)",
			q, q, q)
	}

	var rows []OutstandingRow
	err := query.
		Group("customers.id, customers.name, customers.phone, customers.gst_id").
		Order("total_pending DESC, customer_name ASC").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to build outstanding summary", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if rows == nil {
		rows = []OutstandingRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// OutstandingDetail returns one customer's bills, newest first, optionally
// date-bounded
func OutstandingDetail(c echo.Context) error {
	log := logger.FromContext(c)
	owner, _ := middleware.OwnerID(c)
	prometheus.RecordReportQuery("outstanding_detail")

	query := database.GetDB().Model(&model.Bill{}).
		Select("id, bill_number, bill_date, grand_total, paid_amount, pending_amount").
		Where("customer_id = ? AND user_id = ?", c.Param("customerId"), owner)

	if from := c.QueryParam("from"); from != "" {
		query = query.Where("bill_date >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("bill_date <= ?", to)
	}

	var rows []OutstandingBillRow
	if err := query.Order("bill_date DESC, id DESC").Scan(&rows).Error; err != nil {
		log.Error("Failed to build outstanding detail", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if rows == nil {
		rows = []OutstandingBillRow{}
	}
	return c.JSON(http.StatusOK, rows)
}
