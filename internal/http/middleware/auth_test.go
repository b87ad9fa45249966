package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lfarias/go-keys-backend/internal/security"
)

func authRouter(t *testing.T, tokens *security.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", Auth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserID),
			"name":    c.GetString(CtxUserName),
			"role":    c.GetString(CtxUserRole),
		})
	})
	r.GET("/admin", Auth(tokens), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	tok, err := tokens.Generate("u-1", "Ana", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["user_id"] != "u-1" || body["role"] != "student" || body["name"] != "Ana" {
		t.Fatalf("claims in context = %v", body)
	}
}

func TestAuth_MissingAndMalformed(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"missing", "", "missing_token"},
		{"wrong scheme", "Basic abc", "missing_token"},
		{"garbage", "Bearer not.a.token", "invalid_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", w.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body["code"], tc.code)
			}
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	past := time.Now().Add(-2 * time.Hour)
	claims := security.Claims{
		UserID: "u-1",
		Role:   "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "token_expired" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestRequireRole(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	r := authRouter(t, tokens)

	studentTok, _ := tokens.Generate("u-1", "Ana", "student")
	adminTok, _ := tokens.Generate("u-2", "Root", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+studentTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("student on admin route = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin on admin route = %d", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Bearer abc":       "abc",
		"bearer abc":       "abc",
		"BEARER  abc ":     "abc",
		"Basic abc":        "",
		"Bearerabc":        "",
		"Bearer":           "",
		"Bearer a b":       "a b",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
