package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

// OriginPolicy lists the browser origins and Host values the API answers.
// An empty TrustedHosts, or one containing "*", accepts any host.
type OriginPolicy struct {
	AllowedOrigins []string
	TrustedHosts   []string
}

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID"
)

// CORSMiddleware echoes allowed origins with credentials enabled. A
// preflight from an unknown origin is refused with 403.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	allowAny := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAny = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		c.Header("Vary", "Origin")
		_, ok := allowed[origin]
		ok = ok || allowAny
		if ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", HeaderRequestID+", Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			if !ok {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// TrustedHostMiddleware rejects requests whose Host header is not listed.
// Entries may be exact names or "*.example.com" suffix patterns.
func TrustedHostMiddleware(hosts []string) gin.HandlerFunc {
	var exact []string
	var suffixes []string
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case h == "*":
			return func(c *gin.Context) { c.Next() }
		case strings.HasPrefix(h, "*."):
			suffixes = append(suffixes, h[1:])
		default:
			exact = append(exact, h)
		}
	}
	if len(exact) == 0 && len(suffixes) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		host := strings.ToLower(c.Request.Host)
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if hostAllowed(host, exact, suffixes) {
			c.Next()
			return
		}
		_ = c.Error(apperror.NewInvalidInput("invalid host header", nil))
		c.Abort()
	}
}

func hostAllowed(host string, exact, suffixes []string) bool {
	for _, h := range exact {
		if host == h {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
