package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/openauthstack/user-auth-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func adminEnv(t *testing.T) (*testEnv, models.TokenResponse) {
	t.Helper()
	env := newTestEnv(t)
	env.register(t, "admin@example.com", "admin", "adminpassword")
	for _, u := range env.store.users {
		if u.Username == "admin" {
			u.IsAdmin = true
		}
	}
	return env, env.login(t, "admin", "adminpassword", false)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "user@example.com", "johndoe", "password123")
	resp := env.login(t, "johndoe", "password123", false)

	routes := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/admin/users", nil},
		{http.MethodGet, "/admin/users/export", nil},
		{http.MethodPut, "/admin/users/1/active", gin.H{"is_active": false}},
	}
	for _, route := range routes {
		w := env.do(t, route.method, route.path, route.body, bearerHeader(resp.AccessToken))
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", route.method, route.path, w.Code)
		}
	}
}

func TestAdminListUsers(t *testing.T) {
	env, admin := adminEnv(t)
	env.register(t, "user@example.com", "johndoe", "password123")

	w := env.do(t, http.MethodGet, "/admin/users", nil, bearerHeader(admin.AccessToken))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	users, ok := body["users"].([]interface{})
	if !ok || len(users) != 2 {
		t.Errorf("users = %v, want 2 entries", body["users"])
	}
	if _, ok := body["pagination"]; !ok {
		t.Error("missing pagination info")
	}

	w = env.do(t, http.MethodGet, "/admin/users?search=johndoe", nil, bearerHeader(admin.AccessToken))
	body = decodeBody(t, w)
	if users, ok := body["users"].([]interface{}); !ok || len(users) != 1 {
		t.Errorf("search result = %v, want 1 entry", body["users"])
	}
}

func TestAdminExportUsers(t *testing.T) {
	env, admin := adminEnv(t)
	env.register(t, "user@example.com", "johndoe", "password123")

	w := env.do(t, http.MethodGet, "/admin/users/export", nil, bearerHeader(admin.AccessToken))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Users")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 { // header + 2 users
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][1] != "Email" || rows[0][2] != "Username" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, "$2a$") || strings.Contains(cell, "$2b$") {
				t.Fatal("export contains a bcrypt hash")
			}
		}
	}
}

func TestAdminSetUserActive(t *testing.T) {
	env, admin := adminEnv(t)
	env.register(t, "user@example.com", "johndoe", "password123")
	user := env.login(t, "johndoe", "password123", true)

	var userID uint
	for _, u := range env.store.users {
		if u.Username == "johndoe" {
			userID = u.ID
		}
	}

	w := env.do(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/active", userID), gin.H{"is_active": false}, bearerHeader(admin.AccessToken))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if env.store.users[userID].IsActive {
		t.Error("user still active after admin deactivation")
	}

	// the deactivated user's sessions are cut off
	w = env.do(t, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": user.RefreshToken}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after deactivation status = %d, want 401", w.Code)
	}
	w = env.do(t, http.MethodGet, "/auth/me", nil, bearerHeader(user.AccessToken))
	if w.Code != http.StatusForbidden {
		t.Errorf("me after deactivation status = %d, want 403", w.Code)
	}

	// unknown user and malformed id
	w = env.do(t, http.MethodPut, "/admin/users/999/active", gin.H{"is_active": false}, bearerHeader(admin.AccessToken))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
	w = env.do(t, http.MethodPut, "/admin/users/abc/active", gin.H{"is_active": false}, bearerHeader(admin.AccessToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
}
