package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const adminIssuer = "jungbot"

type JWTMiddleware struct {
	secret []byte
	log    *zap.Logger
}

func NewJWTMiddleware(secret string, logger *zap.Logger) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(secret), log: logger}
}

// IssueAdminToken signs an HS256 token accepted by the admin routes.
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    adminIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (j *JWTMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "missing authorization")
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return utils.JSONError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return j.secret, nil
		}, jwt.WithIssuer(adminIssuer), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			j.log.Debug("jwt invalid", zap.Error(err))
			return utils.JSONError(c, fiber.StatusUnauthorized, utils.ErrUnauthorized.Error())
		}

		c.Locals("admin", claims.Subject)
		return c.Next()
	}
}

// TelegramSecret checks the header Telegram echoes back from setWebhook's
// secret_token. An empty secret disables the check.
func TelegramSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return utils.JSONError(c, fiber.StatusUnauthorized, utils.ErrUnauthorized.Error())
		}
		return c.Next()
	}
}
