package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"booksstock/internal/entity"
	"booksstock/internal/platform/crypto"
)

// TestUser is an account without catalog rights
var TestUser = entity.User{
	ID:        "5b0f5c1e-5f39-4c3b-9a43-3c1f2b6d7e01",
	Login:     "reader",
	Email:     "reader@example.com",
	Password:  "hashedpassword",
	Role:      entity.RoleUser,
	CreatedAt: time.Now(),
}

// TestAdminUser is an account that administers the catalog
var TestAdminUser = entity.User{
	ID:        "7c2a9d40-1e6b-4f0e-8d1a-9b4e5f6a7b02",
	Login:     "admin",
	Email:     "admin@example.com",
	Password:  "hashedpassword",
	Role:      entity.RoleAdmin,
	CreatedAt: time.Now(),
}

// TestBook is a well-formed catalog record
var TestBook = entity.Book{
	ID:          "6523f1a09c1d2e3f4a5b6c7d",
	Title:       "Test Book Title",
	Author:      "Test Author",
	Description: "A test book description",
	Language:    "english",
	Genres:      []string{"fiction"},
	Link:        "https://books.example.com/test",
	IsAvailable: true,
	Price:       9.99,
}

// GenerateTestToken signs a valid one-hour token for u
func GenerateTestToken(secret string, u entity.User) string {
	token, _, _, _ := crypto.GenerateToken(secret, u.ID, u.Login, u.Role, time.Hour)
	return token
}

// GenerateExpiredToken signs a token that expired an hour ago
func GenerateExpiredToken(secret string, u entity.User) string {
	c := crypto.Claims{
		Sub:   u.ID,
		Login: u.Login,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode returns error.code of an error envelope, or "".
func (r RecordResponse) ErrorCode() string {
	errBody, ok := r.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}
