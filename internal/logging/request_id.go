// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader carries the request id in and out of the API.
	RequestIDHeader = "X-Request-Id"

	requestIDField = "request_id"
)

type requestIDKey struct{}

// WithRequestID attaches id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns a logger entry tagged with the request id carried by ctx.
func FromContext(ctx context.Context) *log.Entry {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.WithField(requestIDField, id)
	}
	return log.NewEntry(log.StandardLogger())
}

// NewRequestID returns a short id suitable for the log prefix.
func NewRequestID() string {
	return uuid.NewString()[:8]
}

// RequestID reuses an inbound X-Request-Id or mints one, echoes it on the
// response and stores it on both the gin and request contexts.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = NewRequestID()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Set(requestIDField, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
