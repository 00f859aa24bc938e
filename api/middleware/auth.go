package middleware

import (
	"errors"
	"strings"
	"time"

	"ordersvc/api/ctxutil"
	"ordersvc/api/response"
	"ordersvc/config"
	"ordersvc/domain/identity"
	appErrors "ordersvc/pkg/errors"
	"ordersvc/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	UserIDHeader    = "X-User-ID"
	UserRolesHeader = "X-User-Roles"
)

// Claims is the bearer token payload. userId falls back to sub.
type Claims struct {
	UserID string   `json:"userId,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) actor() identity.Actor {
	userID := c.UserID
	if userID == "" {
		userID = c.Subject
	}
	return identity.Actor{UserID: userID, Roles: c.Roles}
}

// AuthMiddleware resolves the caller into an identity.Actor. A missing
// token leaves the request anonymous and the application services decide;
// an invalid token is rejected here.
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return headerIdentity
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Abort(c, appErrors.Unauthorized("authorization header must use the Bearer scheme"))
			return
		}

		var claims Claims
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			logger.Warn("Rejected bearer token",
				zap.String("request_id", response.GetRequestID(c)),
				zap.Error(err))
			message := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "token expired"
			}
			response.Abort(c, appErrors.Unauthorized(message))
			return
		}

		ctxutil.SetActor(c, claims.actor())
		c.Next()
	}
}

func headerIdentity(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if userID != "" {
		var roles []string
		for _, r := range strings.Split(c.GetHeader(UserRolesHeader), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, strings.ToUpper(r))
			}
		}
		ctxutil.SetActor(c, identity.Actor{UserID: userID, Roles: roles})
	}
	c.Next()
}

// SignToken issues an HS256 token accepted by AuthMiddleware.
func SignToken(cfg *config.AuthConfig, userID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
