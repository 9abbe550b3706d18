package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMissingToken = errors.New("authorization required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenVerifier validates HMAC bearer tokens issued by the identity service.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier creates a verifier. Empty issuer or audience disables that check.
func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Verify parses the token and returns the caller id and token id.
func (v *TokenVerifier) Verify(tokenString string) (userID uint, jti string, err error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, "", ErrInvalidToken
	}

	jti, _ = claims["jti"].(string)
	return uint(id), jti, nil
}

func (v *TokenVerifier) fromRequest(c *fiber.Ctx) (uint, string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return 0, "", ErrMissingToken
	}
	tokenString, ok := BearerToken(header)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return v.Verify(tokenString)
}

func setCaller(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// AuthRequired rejects requests without a valid bearer token. Revoked token
// ids are looked up in Redis under blacklist:<jti> when a client is present.
func AuthRequired(v *TokenVerifier, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, jti, err := v.fromRequest(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		if jti != "" && rdb != nil {
			revoked, rerr := rdb.Exists(c.UserContext(), "blacklist:"+jti).Result()
			if rerr == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		setCaller(c, userID)
		return c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, _, err := v.fromRequest(c); err == nil {
			setCaller(c, userID)
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user id, or 0 for anonymous requests.
func CallerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}
