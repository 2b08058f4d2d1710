package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizis-session-service/internal/app"
	"quizis-session-service/internal/infra/memory"
)

func TestRegisterLoginEndpoints(t *testing.T) {
	handler := NewAPIHandler(app.NewAuthService(memory.NewUserStore()), stubProvider{})

	rec := httptest.NewRecorder()
	handler.Register(rec, postJSON("/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"pw"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.Register(rec, postJSON("/api/auth/register", `{"username":"alice2","email":"alice@example.com","password":"pw2"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, postJSON("/api/auth/login", `{"email":"alice@example.com","password":"pw"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, postJSON("/api/auth/login", `{"email":"alice@example.com","password":"nope"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	handler := NewAPIHandler(app.NewAuthService(memory.NewUserStore()), stubProvider{})

	rec := httptest.NewRecorder()
	handler.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "General Knowledge") {
		t.Fatalf("expected category listing, got %s", rec.Body.String())
	}
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
