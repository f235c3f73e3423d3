package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// JWT expiration time - 24 hours
	jwtExpirationHours = 24
	jwtIssuer          = "brewday-service"
)

// Context keys for storing user information
type contextKey string

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
)

type JWTClaims struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and checks HS256 tokens. With an empty secret it is
// disabled: no tokens are issued and every request passes.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

// NewJWTManager creates a manager signing with secret
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured
func (m *JWTManager) Enabled() bool {
	return len(m.secret) > 0
}

// GenerateJWT generates a JWT token for the given user
func (m *JWTManager) GenerateJWT(user *User) (string, error) {
	if !m.Enabled() {
		return "", errors.New("token signing is disabled")
	}
	if user.ID == "" || user.Username == "" {
		return "", jwt.ErrInvalidKey
	}

	now := m.now()
	claims := &JWTClaims{
		Username: user.Username,
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpirationHours * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateJWT validates and parses a JWT token
func (m *JWTManager) ValidateJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrInvalidKey
	}
	return claims, nil
}

// RequireToken is middleware that rejects requests without a valid bearer
// token. It passes every request through when the manager is disabled.
func (m *JWTManager) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>" format
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := m.ValidateJWT(tokenParts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts user information from request context
func GetUserFromContext(ctx context.Context) (userID, username string, ok bool) {
	userID, ok1 := ctx.Value(userIDKey).(string)
	username, ok2 := ctx.Value(usernameKey).(string)
	if !ok1 || !ok2 {
		return "", "", false
	}
	return userID, username, true
}
