package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-do-list/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "test-secret"
	testIssuer = "godolist-backend"
)

func createTestToken(method jwt.SigningMethod, issuer string, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "test-user-123",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(method, claims)
	return token.SignedString([]byte(testSecret))
}

func setupProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{Secret: testSecret, Issuer: testIssuer}))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middleware.ContextSubject)})
	})
	return router
}

func TestAuthzMiddleware_NoToken(t *testing.T) {
	router := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_InvalidFormat(t *testing.T) {
	router := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_InvalidToken(t *testing.T) {
	router := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_ValidToken(t *testing.T) {
	router := setupProtectedRouter()

	token, err := createTestToken(jwt.SigningMethodHS256, testIssuer, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != `{"subject":"test-user-123"}` {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}

func TestAuthzMiddleware_RejectedTokens(t *testing.T) {
	tests := []struct {
		name    string
		method  jwt.SigningMethod
		issuer  string
		expires time.Time
	}{
		{"expired", jwt.SigningMethodHS256, testIssuer, time.Now().Add(-time.Hour)},
		{"wrong issuer", jwt.SigningMethodHS256, "someone-else", time.Now().Add(time.Hour)},
		{"wrong algorithm", jwt.SigningMethodHS512, testIssuer, time.Now().Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupProtectedRouter()
			token, err := createTestToken(tt.method, tt.issuer, tt.expires)
			if err != nil {
				t.Fatalf("Failed to create token: %v", err)
			}

			req, _ := http.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}
