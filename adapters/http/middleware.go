package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const (
	GinContextKeyClaims    = "claims"
	GinContextKeyRequestID = "requestID"
	HeaderRequestID        = "X-Request-ID"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the verified claims on the context.
func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, apperror.NewUnauthorized("authorization header is required", nil))
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, apperror.NewUnauthorized("invalid token format", nil))
			return
		}

		claims, err := jwtSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			log.Debug("Rejected bearer token", zap.Error(err))
			abortUnauthorized(c, err)
			return
		}

		c.Set(GinContextKeyClaims, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	_ = c.Error(err)
	c.Abort()
}

func GetClaimsFromGinContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(GinContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// actorFromContext names the caller for logs and events.
func actorFromContext(c *gin.Context) string {
	if claims, ok := GetClaimsFromGinContext(c); ok {
		return claims.Username()
	}
	return "anonymous"
}

// ErrorMiddleware renders the last error pushed with c.Error. Internal
// failures are logged with their cause and answered with a generic body.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unhandled error", err)
		}

		status := apperror.ToHTTPStatus(appErr)
		fields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.String("request_id", c.GetString(GinContextKeyRequestID)),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, fields...)
		} else {
			log.Warn("Request rejected", append(fields, zap.String("error", appErr.Error()))...)
		}

		c.AbortWithStatusJSON(status, appErr.ToJSON())
	}
}

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("http_method", c.Request.Method),
			zap.String("uri", c.Request.URL.RequestURI()),
			zap.Int("status_code", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Warn("Request completed with server error", fields...)
		case status >= http.StatusBadRequest:
			log.Info("Request completed with client error", fields...)
		default:
			log.Info("Request completed successfully", fields...)
		}
	}
}
