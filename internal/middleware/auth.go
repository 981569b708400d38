package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	errMissingUserID = errors.New("user id not found in token")
	errBadUserID     = errors.New("invalid user id format")
)

// TokenValidator resolves a bearer token to the caller's user id
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

// JWTValidator checks HMAC-signed tokens against a shared secret
type JWTValidator struct {
	secret []byte
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken verifies the signature and expiry and reads the user id from
// the user_id, sub or uid claim, in that order.
func (v *JWTValidator) ValidateToken(_ context.Context, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	var userIDStr string
	for _, key := range []string{"user_id", "sub", "uid"} {
		if s, ok := claims[key].(string); ok && s != "" {
			userIDStr = s
			break
		}
	}
	if userIDStr == "" {
		return uuid.Nil, errMissingUserID
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, errBadUserID
	}
	return userID, nil
}

// Auth validates the bearer token and stores user_id and jwtToken on the
// context. WebSocket upgrades cannot set headers from a browser, so the token
// may also arrive as the "token" query parameter.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c, msg, "인증이 필요합니다")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userID, err := validator.ValidateToken(ctx, tokenString)
		if err != nil {
			switch {
			case errors.Is(err, errMissingUserID):
				abortUnauthorized(c, "User ID not found in token", "토큰에서 사용자 ID를 찾을 수 없습니다")
			case errors.Is(err, errBadUserID):
				abortUnauthorized(c, "Invalid user ID format", "유효하지 않은 사용자 ID 형식입니다")
			default:
				abortUnauthorized(c, "Invalid or expired token", "유효하지 않거나 만료된 토큰입니다")
			}
			return
		}

		c.Set("user_id", userID)
		c.Set("jwtToken", tokenString)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if q := c.Query("token"); q != "" {
			return q, ""
		}
		return "", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

func abortUnauthorized(c *gin.Context, message, localized string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"message": localized,
	})
}
