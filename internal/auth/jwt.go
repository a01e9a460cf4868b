// Package auth issues and verifies the signed tokens the admin API uses.
package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies HS256 admin tokens
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// Claims carried inside an admin token
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// NewTokenIssuer creates a TokenIssuer with the given secret and token
// lifetime
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// NewTokenIssuerFromEnv builds a TokenIssuer from SECRET_KEY and
// TOKEN_EXPIRY_HOURS, with a development fallback secret
func NewTokenIssuerFromEnv() *TokenIssuer {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	hours := 24
	if v := os.Getenv("TOKEN_EXPIRY_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	return NewTokenIssuer(secret, time.Duration(hours)*time.Hour)
}

// GenerateToken mints a signed token for a user
func (t *TokenIssuer) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks a token's signature and expiry and returns its claims
func (t *TokenIssuer) VerifyToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
