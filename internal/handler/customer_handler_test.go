package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/pkg/database"
)

func TestCustomerCRUD(t *testing.T) {
	e := setupTestApp(t)
	token := signupUser(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/api/customers", token, map[string]interface{}{
		"name":    "Acme",
		"gst_id":  "GST-1",
		"phone":   "12345",
		"address": "1 Main St",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	var created model.Customer
	decodeBody(t, rec, &created)
	if created.ID == 0 || created.Name != "Acme" {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/customers/%d", created.ID), token, map[string]interface{}{
		"name":   "Acme Ltd",
		"gst_id": "GST-1",
		"phone":  "54321",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	var updated model.Customer
	decodeBody(t, rec, &updated)
	if updated.Name != "Acme Ltd" || updated.Phone != "54321" {
		t.Errorf("updated = %+v", updated)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/customers", token, nil)
	var customers []model.Customer
	decodeBody(t, rec, &customers)
	if len(customers) != 1 || customers[0].Name != "Acme Ltd" {
		t.Errorf("list = %+v", customers)
	}

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/customers/%d", created.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/customers", token, nil)
	decodeBody(t, rec, &customers)
	if len(customers) != 0 {
		t.Errorf("list after delete = %+v, want empty", customers)
	}
}

func TestCustomerIsolation(t *testing.T) {
	e := setupTestApp(t)
	alice := signupUser(t, e, "alice")
	bob := signupUser(t, e, "bob")

	customerID := createCustomer(t, e, alice, "Acme")

	rec := doJSON(t, e, http.MethodGet, "/api/customers", bob, nil)
	var customers []model.Customer
	decodeBody(t, rec, &customers)
	if len(customers) != 0 {
		t.Errorf("bob sees %d customers, want 0", len(customers))
	}

	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/customers/%d", customerID), bob, map[string]interface{}{"name": "Hijacked"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("bob update: status %d, want 404", rec.Code)
	}
	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/customers/%d", customerID), bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("bob delete: status %d, want 404", rec.Code)
	}
}

func TestDeleteCustomerWithBillsBlocked(t *testing.T) {
	e := setupTestApp(t)
	token := signupUser(t, e, "alice")
	customerID := createCustomer(t, e, token, "Acme")
	itemID := createItem(t, e, token, "Widget", 50)

	rec := doJSON(t, e, http.MethodPost, "/api/bills", token, map[string]interface{}{
		"customer_id": customerID,
		"items":       []map[string]interface{}{{"item_id": itemID, "quantity": 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: status %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/customers/%d", customerID), token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete with bills: status %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	// Customer and bill both survive the blocked delete
	db := database.GetDB()
	var customerCount, billCount int64
	db.Model(&model.Customer{}).Where("id = ?", customerID).Count(&customerCount)
	db.Model(&model.Bill{}).Count(&billCount)
	if customerCount != 1 || billCount != 1 {
		t.Errorf("after blocked delete: customers=%d bills=%d, want 1/1", customerCount, billCount)
	}
}

func TestDeleteCustomerForceCascades(t *testing.T) {
	e := setupTestApp(t)
	token := signupUser(t, e, "alice")
	customerID := createCustomer(t, e, token, "Acme")
	otherID := createCustomer(t, e, token, "Globex")
	itemID := createItem(t, e, token, "Widget", 50)

	for _, custID := range []uint{customerID, customerID, otherID} {
		rec := doJSON(t, e, http.MethodPost, "/api/bills", token, map[string]interface{}{
			"customer_id": custID,
			"items":       []map[string]interface{}{{"item_id": itemID, "quantity": 1}},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create bill: status %d", rec.Code)
		}
	}

	rec := doJSON(t, e, http.MethodDelete, fmt.Sprintf("/api/customers/%d?force=true", customerID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("force delete: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success      bool  `json:"success"`
		ID           uint  `json:"id"`
		DeletedBills int64 `json:"deletedBills"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.ID != customerID || resp.DeletedBills != 2 {
		t.Errorf("response = %+v, want success id=%d deletedBills=2", resp, customerID)
	}

	// Only the other customer's bill remains, and no orphaned lines
	db := database.GetDB()
	var billCount, lineCount, customerCount int64
	db.Model(&model.Bill{}).Count(&billCount)
	db.Model(&model.BillItem{}).Count(&lineCount)
	db.Model(&model.Customer{}).Where("id = ?", customerID).Count(&customerCount)
	if billCount != 1 || lineCount != 1 || customerCount != 0 {
		t.Errorf("after cascade: bills=%d lines=%d customer=%d, want 1/1/0", billCount, lineCount, customerCount)
	}
}
