package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/quizmint/qm-engine/internal/api/shared/errors"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	IDENTITY_KEY   contextKey = "identity"
	JWT_CLAIMS_KEY contextKey = "jwt_claims"
)

// IdentityConfig holds identity resolution configuration
type IdentityConfig struct {
	// JWTSecret verifies HS256 wallet-session tokens
	JWTSecret string
}

// guestKeyHeader carries the opaque device-derived key for anonymous play
const guestKeyHeader = "X-Guest-Key"

// ResolveIdentity derives the caller's identity from the request headers.
// A valid Bearer token yields a connected identity keyed by the token
// subject (the wallet address); otherwise the guest key header yields a
// guest identity. The two are never combined: a wallet token wins.
func ResolveIdentity(authHeader, guestKey string, cfg IdentityConfig) (domain.Identity, *jwt.RegisteredClaims, error) {
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return domain.Identity{}, nil, errors.New("invalid Authorization header format")
		}

		claims, err := validateJWT(parts[1], cfg.JWTSecret)
		if err != nil {
			return domain.Identity{}, nil, err
		}
		if claims.Subject == "" {
			return domain.Identity{}, nil, errors.New("token has no subject")
		}

		return domain.Identity{
			Key:   strings.ToLower(claims.Subject),
			Class: domain.ClassConnected,
		}, claims, nil
	}

	if guestKey != "" {
		return domain.Identity{
			Key:   guestKey,
			Class: domain.ClassGuest,
		}, nil, nil
	}

	return domain.Identity{}, nil, errors.New("missing Authorization header or " + guestKeyHeader)
}

// Identity returns a gin middleware that requires a resolvable identity
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, claims, err := ResolveIdentity(
			c.GetHeader("Authorization"),
			c.GetHeader(guestKeyHeader),
			cfg,
		)
		if err != nil {
			logger.Warn("Identity resolution failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(IDENTITY_KEY), identity)
		if claims != nil {
			c.Set(string(JWT_CLAIMS_KEY), claims)
		}

		c.Next()
	}
}

// WalletIdentity returns a gin middleware that requires a connected
// (wallet-backed) identity. Guest keys are rejected.
func WalletIdentity(cfg IdentityConfig) gin.HandlerFunc {
	required := Identity(cfg)
	return func(c *gin.Context) {
		required(c)
		if c.IsAborted() {
			return
		}

		identity, _ := IdentityFrom(c)
		if identity.Class != domain.ClassConnected {
			apiErr := apierrors.NewForbiddenError("Wallet authentication required")
			c.AbortWithStatusJSON(http.StatusForbidden, apiErr)
		}
	}
}

// IdentityFrom extracts the resolved identity from the gin context
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(string(IDENTITY_KEY))
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

// validateJWT validates an HS256 token and returns its registered claims
func validateJWT(tokenString string, secret string) (*jwt.RegisteredClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
