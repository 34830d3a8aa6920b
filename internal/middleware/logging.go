package middleware

import (
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per handled request.
func RequestLogger(log *logrus.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}
