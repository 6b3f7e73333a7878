package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey    = "claims"
	principalKey = "principal"
)

// Middleware authenticates requests by session cookie or bearer token.
type Middleware struct {
	signingKey string
	issuer     string
	cookie     string
	revoker    Revoker
}

// NewMiddleware builds the session middleware. revoker may be nil.
func NewMiddleware(signingKey, issuer, cookie string, revoker Revoker) *Middleware {
	return &Middleware{signingKey: signingKey, issuer: issuer, cookie: cookie, revoker: revoker}
}

// Required enforces a valid, unrevoked HS256 session token.
func (m *Middleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := m.token(c)
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := Parse(tokenStr, m.signingKey, m.issuer)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if m.revoker != nil {
			revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				_ = c.Error(err)
				abort(c, http.StatusServiceUnavailable, "session store unavailable")
				return
			}
			if revoked {
				abort(c, http.StatusUnauthorized, "session has ended")
				return
			}
		}
		c.Set(claimsKey, claims)
		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// token prefers the session cookie and falls back to the Authorization header.
func (m *Middleware) token(c *gin.Context) string {
	if m.cookie != "" {
		if v, err := c.Cookie(m.cookie); err == nil && v != "" {
			return v
		}
	}
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}

// RequireRoles rejects principals holding none of roles.
func RequireRoles(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !p.HasRole(roles...) {
			abort(c, http.StatusForbidden, "you are not allowed to perform this action")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Required.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// ClaimsFrom returns the raw claims stored by Required.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	cl, ok := v.(Claims)
	return cl, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
