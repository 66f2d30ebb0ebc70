package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one key=value line per request. The dashboard is a per-user
// system, so the line carries the session's contact-list email when the
// request is authenticated.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			rid, _ := c.Get(ContextKeyRequestID).(string)
			userEmail, _ := c.Get(ContextKeyUserEmail).(string)
			if userEmail == "" {
				userEmail = "-"
			}
			log.Printf("request_id=%s user=%s method=%s path=%s status=%d latency=%s",
				rid, userEmail, c.Request().Method, c.Request().URL.Path, c.Response().Status, latency)

			return err
		}
	}
}
