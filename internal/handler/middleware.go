package handler

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID reuses the caller's X-Request-ID or generates a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func accessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}

func recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(logger.WriterLevel(logrus.DebugLevel), func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("Panic while handling request")
		abortMessage(c, http.StatusInternalServerError, "Internal Server Error")
	})
}

// rateLimit throttles every client ip to rps requests per second
func rateLimit(rps float64) gin.HandlerFunc {
	lmt := tollbooth.NewLimiter(rps, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})

	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			abortMessage(c, httpErr.StatusCode, "Too Many Requests")
			return
		}
		c.Next()
	}
}
