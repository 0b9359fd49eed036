package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/imyashkale/helmwizard/internal/config"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
)

// Context keys and headers used by the authentication middlewares
const (
	UserIDKey    = "user_id"
	ClaimsKey    = "token_claims"
	UserIDHeader = "X-User-Id"
	LocalUserID  = "local"
)

var (
	ErrMissingKid  = errors.New("missing kid in token header")
	ErrKeyNotFound = errors.New("unable to find appropriate key")
)

// JWKSet represents a JSON Web Key Set
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string   `json:"kid"`
	Kty string   `json:"kty"`
	Use string   `json:"use"`
	N   string   `json:"n"`
	E   string   `json:"e"`
	X5c []string `json:"x5c"`
}

// Auth0Config holds Auth0 configuration
type Auth0Config struct {
	Domain   string
	Audience string

	client *http.Client
	mu     sync.RWMutex
	certs  map[string]string // kid -> PEM
}

// NewAuth0Config creates a new Auth0 configuration
func NewAuth0Config(domain, audience string) *Auth0Config {
	return &Auth0Config{
		Domain:   domain,
		Audience: audience,
		client:   &http.Client{Timeout: 10 * time.Second},
		certs:    make(map[string]string),
	}
}

// NewAuthMiddleware selects the authentication middleware for mode
func NewAuthMiddleware(mode string, auth0 *Auth0Config) gin.HandlerFunc {
	switch mode {
	case config.AuthModeNone:
		logger.Warn("Authentication disabled, requests are attributed to the X-User-Id header")
		return NoAuthentication()
	case config.AuthModeJWT:
		logger.Warn("JWT signatures are not verified, use auth0 mode outside development")
		return Authentication()
	default:
		return AuthenticationWithAuth0(auth0)
	}
}

// NoAuthentication attributes requests to the X-User-Id header, or to a single local user
func NoAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userId == "" {
			userId = LocalUserID
		}
		c.Set(UserIDKey, userId)
		c.Next()
	}
}

// Authentication reads the subject of a bearer JWT without verifying its
// signature. Expiry is still enforced. Use AuthenticationWithAuth0 in production.
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		parts := strings.Split(tokenString, ".")
		if len(parts) != 3 {
			logger.WithFields(map[string]interface{}{
				"path":        c.Request.URL.Path,
				"parts_count": len(parts),
			}).Warn("Authentication failed: malformed token")
			abort(c, "malformed_token", fmt.Sprintf("JWT token must have 3 parts (header.payload.signature), got %d part(s)", len(parts)))
			return
		}

		parser := jwt.NewParser(jwt.WithoutClaimsValidation())
		token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			logger.Debugf("Token parse error: %v", err)
			abort(c, "invalid_token", fmt.Sprintf("Failed to parse token: %v", err))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, "invalid_token", "Invalid token claims")
			return
		}

		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && time.Now().After(exp.Time) {
			logger.WithField("path", c.Request.URL.Path).Warn("Authentication failed: token expired")
			abort(c, "token_expired", "Token has expired")
			return
		}

		setSubject(c, claims)
	}
}

// AuthenticationWithAuth0 validates Auth0 RS256 tokens against the tenant JWKS,
// including issuer and audience
func AuthenticationWithAuth0(cfg *Auth0Config) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(fmt.Sprintf("https://%s/", cfg.Domain)),
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			cert, err := cfg.pemCert(token)
			if err != nil {
				return nil, err
			}
			return jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
		})
		if err != nil || !token.Valid {
			msg := "Token is not valid"
			if err != nil {
				msg = err.Error()
			}
			logger.WithFields(map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": msg,
			}).Warn("Auth0 authentication failed: token validation error")
			abort(c, "invalid_token", msg)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, "invalid_token", "Invalid token claims")
			return
		}

		setSubject(c, claims)
	}
}

// bearerToken extracts the token or aborts the request
func bearerToken(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, prefix) || len(authHeader) == len(prefix) {
		logger.WithField("path", c.Request.URL.Path).Warn("Authentication failed: missing or invalid authorization header")
		abort(c, "unauthorized", "Missing or invalid authorization header")
		return "", false
	}
	return authHeader[len(prefix):], true
}

// setSubject stores the sub claim as the user id and continues the chain
func setSubject(c *gin.Context, claims jwt.MapClaims) {
	userId, err := claims.GetSubject()
	if err != nil || userId == "" {
		logger.WithField("path", c.Request.URL.Path).Warn("Authentication failed: missing user ID in token")
		abort(c, "invalid_token", "Missing user ID in token")
		return
	}

	c.Set(UserIDKey, userId)
	c.Set(ClaimsKey, claims)

	logger.WithFields(map[string]interface{}{
		"user_id": userId,
		"path":    c.Request.URL.Path,
	}).Debug("Authentication successful")

	c.Next()
}

func abort(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// pemCert returns the signing certificate for the token's kid, fetching the
// JWKS once per unknown kid
func (cfg *Auth0Config) pemCert(token *jwt.Token) (string, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return "", ErrMissingKid
	}

	cfg.mu.RLock()
	cert, ok := cfg.certs[kid]
	cfg.mu.RUnlock()
	if ok {
		return cert, nil
	}

	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
	resp, err := cfg.client.Get(jwksURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var jwks JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return "", err
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	for _, key := range jwks.Keys {
		if len(key.X5c) > 0 {
			cfg.certs[key.Kid] = fmt.Sprintf("-----BEGIN CERTIFICATE-----\n%s\n-----END CERTIFICATE-----", key.X5c[0])
		}
	}

	if cert, ok := cfg.certs[kid]; ok {
		return cert, nil
	}
	return "", ErrKeyNotFound
}
