package model

import "time"

// Bill stores authoritative totals computed by the billing engine.
// Invariants: grand_total = subtotal + gst_amount - discount,
// pending_amount = grand_total - paid_amount, 0 <= paid_amount <= grand_total.
type Bill struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	BillNumber    string    `json:"bill_number" gorm:"type:varchar(100);index"`
	BillDate      string    `json:"bill_date" gorm:"type:varchar(10);index"`
	CustomerID    uint      `json:"customer_id" gorm:"index;not null"`
	Subtotal      float64   `json:"subtotal"`
	GSTPercent    float64   `json:"gst_percent" gorm:"column:gst_percent"`
	GSTAmount     float64   `json:"gst_amount" gorm:"column:gst_amount"`
	Discount      float64   `json:"discount"`
	GrandTotal    float64   `json:"grand_total"`
	PaidAmount    float64   `json:"paid_amount" gorm:"index"`
	PendingAmount float64   `json:"pending_amount" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BillItem is a point-in-time snapshot of one line: later catalog price
// changes never affect an existing bill.
type BillItem struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	BillID   uint    `json:"bill_id" gorm:"index;not null"`
	ItemID   uint    `json:"item_id" gorm:"not null"`
	Size     float64 `json:"size"`
	Quantity float64 `json:"quantity" gorm:"not null"`
	Price    float64 `json:"price" gorm:"not null"`
	Total    float64 `json:"total" gorm:"not null"`
}
