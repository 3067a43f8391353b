package middleware

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetbook/internal/config"
	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/services"
)

const userIDKey = "userID"

// Claims are the token claims read from the identity provider. Email and
// name are optional profile claims.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenVerifier checks bearer tokens issued by the external identity
// provider. It never issues tokens itself.
type TokenVerifier struct {
	key     interface{}
	methods []string
	opts    []jwt.ParserOption
}

// NewTokenVerifier builds a verifier from configuration. An RS256 public key
// takes precedence over the shared HS256 secret. The key file may hold a
// PKIX or PKCS1 public key or the issuer's signing certificate. Keys are
// not fetched from a JWKS endpoint, so a rotated issuer key means replacing
// the file and restarting.
func NewTokenVerifier(cfg *config.Config) (*TokenVerifier, error) {
	v := &TokenVerifier{}

	switch {
	case cfg.AuthPublicKeyPath != "":
		pem, err := os.ReadFile(cfg.AuthPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read auth public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("parse auth public key: %w", err)
		}
		v.key = key
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.AuthHMACSecret != "":
		v.key = []byte(cfg.AuthHMACSecret)
		v.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, fmt.Errorf("no token verification key configured")
	}

	v.opts = []jwt.ParserOption{jwt.WithValidMethods(v.methods), jwt.WithExpirationRequired()}
	if cfg.AuthIssuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(cfg.AuthIssuer))
	}
	if cfg.AuthAudience != "" {
		v.opts = append(v.opts, jwt.WithAudience(cfg.AuthAudience))
	}
	return v, nil
}

// Verify parses tokenString and returns its claims. The subject is required.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token, makes sure a local user exists
// for its subject and sets the user id in the context.
func AuthMiddleware(verifier *TokenVerifier, users services.UserServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		user, err := users.EnsureUser(claims.Subject, claims.Email, claims.Name)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}
