package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	mid "github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/pkg/config"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/jwtutil"
)

// setupTestApp boots an in-memory database and an echo instance with the
// full route table, mirroring cmd/main.go.
func setupTestApp(t *testing.T) *echo.Echo {
	t.Helper()

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-secret", ExpirationTime: time.Hour})

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		DB: config.DatabaseConfig{
			Driver: "sqlite",
			Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
	}
	if err := database.InitDB(cfg); err != nil {
		t.Fatalf("init db: %v", err)
	}

	UploadDir = t.TempDir()

	e := echo.New()

	e.GET("/api/health", Health)
	e.POST("/api/auth/signup", Signup)
	e.POST("/api/auth/login", Login)
	e.GET("/api/auth/me", Me, mid.AuthMiddleware)

	customerAPI := e.Group("/api/customers", mid.AuthMiddleware)
	customerAPI.GET("", ListCustomers)
	customerAPI.POST("", CreateCustomer)
	customerAPI.PUT("/:id", UpdateCustomer)
	customerAPI.DELETE("/:id", DeleteCustomer)

	itemAPI := e.Group("/api/items", mid.AuthMiddleware)
	itemAPI.GET("", ListItems)
	itemAPI.POST("", CreateItem)
	itemAPI.PUT("/:id", UpdateItem)
	itemAPI.DELETE("/:id", DeleteItem)

	billAPI := e.Group("/api/bills", mid.AuthMiddleware)
	billAPI.GET("", ListBills)
	billAPI.GET("/search", SearchBills)
	billAPI.GET("/:id", GetBill)
	billAPI.POST("", CreateBill)
	billAPI.PUT("/:id", UpdateBill)
	billAPI.PATCH("/:id/payment", UpdateBillPayment)
	billAPI.DELETE("/:id", DeleteBill)

	profileAPI := e.Group("/api/profile", mid.AuthMiddleware)
	profileAPI.GET("", GetProfile)
	profileAPI.POST("", SaveProfile)

	reportAPI := e.Group("/api/reports", mid.AuthMiddleware)
	reportAPI.GET("/monthly", MonthlyReport)
	reportAPI.GET("/outstanding", OutstandingSummary)
	reportAPI.GET("/outstanding/:customerId", OutstandingDetail)

	return e
}

// doJSON performs one request against the test app
func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// signupUser registers an account through the API and returns its token
func signupUser(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()

	rec := doJSON(t, e, http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"username":     username,
		"password":     "pass1234",
		"company_name": username + " Co",
		"address":      "12 Market Road",
		"phone":        "9876500000",
		"email":        username + "@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("signup %s: empty token", username)
	}
	return resp.Token
}

// createCustomer seeds one customer through the API and returns its id
func createCustomer(t *testing.T, e *echo.Echo, token, name string) uint {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/customers", token, map[string]interface{}{
		"name":   name,
		"gst_id": "GST-" + name,
		"phone":  "111222333",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d body %s", rec.Code, rec.Body.String())
	}
	var customer struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &customer)
	return customer.ID
}

// createItem seeds one catalog item through the API and returns its id
func createItem(t *testing.T, e *echo.Echo, token, name string, price float64) uint {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/items", token, map[string]interface{}{
		"name":     name,
		"price":    price,
		"quantity": 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item: status %d body %s", rec.Code, rec.Body.String())
	}
	var item struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &item)
	return item.ID
}
