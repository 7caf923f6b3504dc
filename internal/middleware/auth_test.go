package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/testhall/config"
	"github.com/lshigami/testhall/internal/scoring"
)

const testSecret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWT{Secret: testSecret, Issuer: "testhall"}}
	auth := NewAuthMiddleware(cfg)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/staff", auth.RequireAuth(), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	valid, err := IssueToken(testSecret, "testhall", 7, scoring.RoleStudent, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	expired, _ := IssueToken(testSecret, "testhall", 7, scoring.RoleStudent, -time.Hour)
	wrongSecret, _ := IssueToken("other", "testhall", 7, scoring.RoleStudent, time.Hour)
	wrongIssuer, _ := IssueToken(testSecret, "elsewhere", 7, scoring.RoleStudent, time.Hour)
	badRole, _ := IssueToken(testSecret, "testhall", 7, scoring.Role("guest"), time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7, Role: "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + wrongSecret, http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + wrongIssuer, http.StatusUnauthorized},
		{"unknown role", "Bearer " + badRole, http.StatusUnauthorized},
		{"alg none", "Bearer " + noneAlg, http.StatusUnauthorized},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if w.Header().Get(HeaderRequestID) == "" {
				t.Errorf("missing %s header", HeaderRequestID)
			}
		})
	}
}

func TestRequireStaff(t *testing.T) {
	r := newRouter()
	for _, tc := range []struct {
		role scoring.Role
		want int
	}{
		{scoring.RoleStudent, http.StatusForbidden},
		{scoring.RoleTeacher, http.StatusNoContent},
		{scoring.RoleAdmin, http.StatusNoContent},
	} {
		token, _ := IssueToken(testSecret, "testhall", 1, tc.role, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.role, w.Code, tc.want)
		}
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
