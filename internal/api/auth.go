package api

import (
	"errors"
	"net/http"
	"strings"

	"runetick/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUID   = "uid"
	ctxEmail = "email"
)

var errNoSigningKey = errors.New("no signing key configured")

// authenticator verifies HMAC-signed bearer tokens. The user id is read from
// the "uid" claim, falling back to "sub".
type authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func newAuthenticator(cfg config.AuthConfig) *authenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &authenticator{
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(opts...),
	}
}

func (a *authenticator) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			// an empty HMAC key would verify tokens anyone can sign
			if len(a.secret) == 0 {
				return nil, errNoSigningKey
			}
			return a.secret, nil
		})
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		uid, _ := claims["uid"].(string)
		if uid == "" {
			uid, _ = claims.GetSubject()
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		email, _ := claims["email"].(string)

		c.Set(ctxUID, uid)
		c.Set(ctxEmail, email)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so a "token" query parameter is accepted as well.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}
