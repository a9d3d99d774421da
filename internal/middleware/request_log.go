package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// 1リクエスト1行のアクセスログ
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			entry := log.WithFields(log.Fields{
				"method":  req.Method,
				"path":    req.URL.Path,
				"status":  res.Status,
				"latency": time.Since(start).String(),
			})

			if res.Status >= 500 {
				entry.Warn("request")
			} else {
				entry.Info("request")
			}
			return nil
		}
	}
}
