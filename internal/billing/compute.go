// Package billing holds the bill computation engine: line resolution,
// totals, payment clamping, status derivation and proportional allocation.
// It is pure arithmetic; persistence stays in the handlers.
package billing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyItems is returned when a bill request carries no line items.
	ErrEmptyItems = errors.New("Items array is required")

	// ErrInvalidQuantity is returned for a non-finite or non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrCustomerNotFound is returned when the customer is absent or owned
	// by another account.
	ErrCustomerNotFound = errors.New("Customer not found")

	// ErrBillNotFound is returned when the bill is absent or owned by
	// another account.
	ErrBillNotFound = errors.New("Bill not found")

	// ErrItemNotFound is returned when a line references an item that is
	// neither owned by the caller nor shared.
	ErrItemNotFound = errors.New("item not found")

	// ErrCustomerHasBills blocks customer deletion without the force flag.
	ErrCustomerHasBills = errors.New("Cannot delete customer with existing bills. You can delete all their bills first, or use force delete.")
)

// Bill payment status values derived from paid/pending amounts.
const (
	StatusPaid    = "Paid"
	StatusUnpaid  = "Unpaid"
	StatusPartial = "Partial"
)

// LineRequest is one requested bill line. Price overrides the catalog
// price when non-nil.
type LineRequest struct {
	ItemID   uint     `json:"item_id"`
	Quantity float64  `json:"quantity"`
	Price    *float64 `json:"price"`
	Size     float64  `json:"size"`
}

// Line is a resolved, priced bill line.
type Line struct {
	ItemID   uint
	Size     float64
	Quantity float64
	Price    float64
	Total    float64
}

// Totals carries every derived amount of a bill.
type Totals struct {
	Subtotal      float64
	GSTAmount     float64
	GrandTotal    float64
	PaidAmount    float64
	PendingAmount float64
}

// BuildLines validates the requested lines and resolves effective prices.
// catalogPrices maps item id to the stored catalog price; every requested
// item id must be present. Returns the resolved lines and their subtotal.
func BuildLines(reqs []LineRequest, catalogPrices map[uint]float64) ([]Line, float64, error) {
	if len(reqs) == 0 {
		return nil, 0, ErrEmptyItems
	}

	lines := make([]Line, 0, len(reqs))
	subtotal := 0.0
	for _, r := range reqs {
		price, ok := catalogPrices[r.ItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: item %d", ErrItemNotFound, r.ItemID)
		}
		if !isFinite(r.Quantity) || r.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w for item %d", ErrInvalidQuantity, r.ItemID)
		}
		if r.Price != nil && isFinite(*r.Price) {
			price = *r.Price
		}
		total := price * r.Quantity
		lines = append(lines, Line{
			ItemID:   r.ItemID,
			Size:     r.Size,
			Quantity: r.Quantity,
			Price:    price,
			Total:    total,
		})
		subtotal += total
	}
	return lines, subtotal, nil
}

// ComputeTotals derives every bill amount from the subtotal. Discount is an
// absolute currency amount; the requested paid amount is clamped into
// [0, grand_total].
func ComputeTotals(subtotal, gstPercent, discount, paidRequested float64) Totals {
	gstAmount := subtotal * gstPercent / 100
	grandTotal := subtotal + gstAmount - discount
	paid := ClampPaid(paidRequested, grandTotal)
	return Totals{
		Subtotal:      subtotal,
		GSTAmount:     gstAmount,
		GrandTotal:    grandTotal,
		PaidAmount:    paid,
		PendingAmount: grandTotal - paid,
	}
}

// ClampPaid clamps a requested paid amount into [0, grandTotal].
// Non-finite or negative values count as 0.
func ClampPaid(requested, grandTotal float64) float64 {
	if !isFinite(requested) || requested < 0 {
		requested = 0
	}
	if requested > grandTotal {
		requested = grandTotal
	}
	return requested
}

// Status derives the tri-state payment status. The order matters: a bill
// with zero grand total counts as paid.
func Status(paidAmount, pendingAmount float64) string {
	switch {
	case pendingAmount == 0:
		return StatusPaid
	case paidAmount == 0:
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// Allocate distributes a bill-level amount (paid or pending) onto one line
// by the line's share of the grand total. A zero grand total allocates 0.
func Allocate(lineAmount, grandTotal, billAmount float64) float64 {
	if grandTotal <= 0 {
		return 0
	}
	return lineAmount / grandTotal * billAmount
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
