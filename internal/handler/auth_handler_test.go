package handler

import (
	"net/http"
	"testing"

	"github.com/JenilDobariya6132/shop/internal/model"
	"github.com/JenilDobariya6132/shop/pkg/database"
)

func TestSignupCreatesProfile(t *testing.T) {
	e := setupTestApp(t)
	signupUser(t, e, "alice")

	var profile model.CompanyProfile
	if err := database.GetDB().First(&profile).Error; err != nil {
		t.Fatalf("profile not created at signup: %v", err)
	}
	if profile.CompanyName != "alice Co" {
		t.Errorf("company_name = %q, want %q", profile.CompanyName, "alice Co")
	}
}

func TestSignupValidation(t *testing.T) {
	e := setupTestApp(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing username", map[string]interface{}{
			"password": "pass1234", "company_name": "Co", "address": "a", "phone": "1", "email": "a@b.c",
		}},
		{"short password", map[string]interface{}{
			"username": "alice", "password": "abc", "company_name": "Co", "address": "a", "phone": "1", "email": "a@b.c",
		}},
		{"missing company fields", map[string]interface{}{
			"username": "alice", "password": "pass1234",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/auth/signup", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	e := setupTestApp(t)
	signupUser(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"username":     "alice",
		"password":     "otherpass",
		"company_name": "Other Co",
		"address":      "2 Side St",
		"phone":        "222",
		"email":        "other@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: status %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	e := setupTestApp(t)
	signupUser(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "alice",
		"password": "pass1234",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" || resp.User.Username != "alice" {
		t.Errorf("login response = %+v", resp)
	}

	// The issued token works against a protected route
	rec = doJSON(t, e, http.MethodGet, "/api/auth/me", resp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("me with login token: status %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := setupTestApp(t)
	signupUser(t, e, "alice")

	for name, body := range map[string]map[string]interface{}{
		"wrong password": {"username": "alice", "password": "wrongpass"},
		"unknown user":   {"username": "nobody", "password": "pass1234"},
	} {
		rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", name, rec.Code)
		}
	}
}

func TestMe(t *testing.T) {
	e := setupTestApp(t)
	token := signupUser(t, e, "alice")

	rec := doJSON(t, e, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.User.Username != "alice" || resp.User.ID == 0 {
		t.Errorf("me response = %+v", resp)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without token: status %d, want 401", rec.Code)
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	e := setupTestApp(t)
	signupUser(t, e, "alice")

	var user model.User
	if err := database.GetDB().Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "pass1234" || user.PasswordHash == "" {
		t.Error("password stored in plaintext or empty")
	}
}
