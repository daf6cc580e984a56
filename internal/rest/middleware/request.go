package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/paybill/paybill/internal/types"
)

// HeaderRequestID is the request ID response header
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware attaches a request ID to the request context,
// generating one when the caller did not supply it
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(HeaderRequestID, requestID)

	c.Next()
}

// TenantMiddleware resolves the tenant and user for the request. Until an
// identity provider is wired in, headers override the single-tenant
// defaults.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, userID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
