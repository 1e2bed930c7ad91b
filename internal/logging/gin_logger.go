// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GinLogrusLogger logs one line per request through logrus.
// 5xx responses log at error level and 4xx at warn.
func GinLogrusLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		entry := FromContext(c.Request.Context()).WithFields(log.Fields{
			"status":  status,
			"latency": time.Since(start).Round(time.Microsecond).String(),
			"client":  c.ClientIP(),
		})
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			entry = entry.WithField("errors", errs)
		}
		msg := c.Request.Method + " " + path
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error(msg)
		case status >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}

// GinLogrusRecovery turns handler panics into a 500 and logs the stack.
func GinLogrusRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		FromContext(c.Request.Context()).WithField("panic", recovered).Errorf("recovered from panic\n%s", debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
