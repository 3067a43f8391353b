package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetbook/internal/config"
	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/services"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockUserService struct {
	ensureUserFn func(subject, email, name string) (*models.User, error)
	calls        int
}

func (m *mockUserService) EnsureUser(subject, email, name string) (*models.User, error) {
	m.calls++
	if m.ensureUserFn != nil {
		return m.ensureUserFn(subject, email, name)
	}
	return &models.User{Base: models.Base{ID: "user-" + subject}, Subject: subject, Email: email, Name: name}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	return &models.User{Base: models.Base{ID: id}}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims(subject string) *Claims {
	return &Claims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "https://issuer.example/",
			Audience:  jwt.ClaimStrings{"budgetbook"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func setupAuthRouter(t *testing.T, users services.UserServicer) *gin.Engine {
	t.Helper()
	verifier, err := NewTokenVerifier(&config.Config{
		AuthHMACSecret: testSecret,
		AuthIssuer:     "https://issuer.example/",
		AuthAudience:   "budgetbook",
	})
	if err != nil {
		t.Fatalf("failed to build verifier: %v", err)
	}
	r := gin.New()
	r.Use(AuthMiddleware(verifier, users))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(userIDKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestAuthMiddleware(t *testing.T) {
	expired := validClaims("auth0|1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAudience := validClaims("auth0|1")
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	wrongIssuer := validClaims("auth0|1")
	wrongIssuer.Issuer = "https://evil.example/"
	noSubject := validClaims("")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid_token", "Bearer " + signToken(t, validClaims("auth0|1")), http.StatusOK, ""},
		{"missing_header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad_scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage_token", "Bearer not-a-jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", "Bearer " + signToken(t, expired), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong_audience", "Bearer " + signToken(t, wrongAudience), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong_issuer", "Bearer " + signToken(t, wrongIssuer), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"no_subject", "Bearer " + signToken(t, noSubject), http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserService{}
			rec := doAuthRequest(setupAuthRouter(t, users), tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
				if users.calls != 0 {
					t.Error("expected no user upsert for a rejected token")
				}
				return
			}
			if got := parseBody(t, rec)["user_id"]; got != "user-auth0|1" {
				t.Errorf("expected user id from upsert, got %v", got)
			}
		})
	}

	t.Run("rejects_other_algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims("auth0|1")).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatal(err)
		}
		rec := doAuthRequest(setupAuthRouter(t, &mockUserService{}), "Bearer "+token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("upsert_failure", func(t *testing.T) {
		users := &mockUserService{ensureUserFn: func(string, string, string) (*models.User, error) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down"))
		}}
		rec := doAuthRequest(setupAuthRouter(t, users), "Bearer "+signToken(t, validClaims("auth0|1")))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestNewTokenVerifier(t *testing.T) {
	t.Run("no_key", func(t *testing.T) {
		if _, err := NewTokenVerifier(&config.Config{}); err == nil {
			t.Fatal("expected error without a key")
		}
	})

	t.Run("missing_public_key_file", func(t *testing.T) {
		if _, err := NewTokenVerifier(&config.Config{AuthPublicKeyPath: "/nonexistent/key.pem"}); err == nil {
			t.Fatal("expected error for missing key file")
		}
	})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "issuer.example"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	cert, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	rs256 := []struct {
		name  string
		block *pem.Block
	}{
		{"rs256_public_key", &pem.Block{Type: "PUBLIC KEY", Bytes: pub}},
		{"rs256_signing_certificate", &pem.Block{Type: "CERTIFICATE", Bytes: cert}},
	}
	for _, tc := range rs256 {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "issuer.pem")
			if err := os.WriteFile(path, pem.EncodeToMemory(tc.block), 0o600); err != nil {
				t.Fatalf("failed to write key: %v", err)
			}
			verifier, err := NewTokenVerifier(&config.Config{AuthPublicKeyPath: path, AuthHMACSecret: testSecret})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("auth0|rs")).SignedString(key)
			if err != nil {
				t.Fatalf("failed to sign token: %v", err)
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				t.Fatalf("expected RS256 token to verify: %v", err)
			}
			if claims.Subject != "auth0|rs" {
				t.Errorf("expected subject auth0|rs, got %s", claims.Subject)
			}

			// The public key wins over the shared secret.
			if _, err := verifier.Verify(signToken(t, validClaims("auth0|hs"))); err == nil {
				t.Error("expected HS256 token to be rejected when a public key is configured")
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperrors.WithDetails(apperrors.ErrCategoryInUse, map[string]any{"transaction_count": 2}))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	t.Run("app_error_with_details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", http.NoBody))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		errObj := parseBody(t, rec)["error"].(map[string]interface{})
		details, ok := errObj["details"].(map[string]interface{})
		if !ok || details["transaction_count"] != float64(2) {
			t.Errorf("expected details with transaction_count, got %v", errObj)
		}
	})

	t.Run("unexpected_error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %s", code)
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("generates_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("keeps_valid_incoming_id", func(t *testing.T) {
		const id = "0190b3a4-7c6e-7a1b-9c2d-3e4f5a6b7c8d"
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", id)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != id {
			t.Errorf("expected %s, got %s", id, got)
		}
	})
}

func TestCORS(t *testing.T) {
	newRouter := func(origins []string) *gin.Engine {
		r := gin.New()
		r.Use(CORS(origins))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"wildcard", []string{"*"}, http.MethodGet, "https://a.example", http.StatusOK, "*"},
		{"listed_origin", []string{"https://a.example"}, http.MethodGet, "https://a.example", http.StatusOK, "https://a.example"},
		{"unlisted_origin", []string{"https://a.example"}, http.MethodGet, "https://b.example", http.StatusOK, ""},
		{"preflight", []string{"*"}, http.MethodOptions, "https://a.example", http.StatusNoContent, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/ping", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			newRouter(tt.origins).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("expected allow origin %q, got %q", tt.wantAllow, got)
			}
		})
	}
}
