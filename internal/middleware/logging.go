package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes a concise structured line for each HTTP request.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			rid, _ := c.Get(ContextKeyRequestID).(string)
			if err != nil {
				log.Printf("request_id=%s method=%s path=%s route=%s ip=%s status=%d latency=%s err=%v",
					rid, req.Method, req.URL.Path, c.Path(), c.RealIP(), c.Response().Status, latency, err)
				return err
			}
			log.Printf("request_id=%s method=%s path=%s route=%s ip=%s status=%d latency=%s",
				rid, req.Method, req.URL.Path, c.Path(), c.RealIP(), c.Response().Status, latency)

			return nil
		}
	}
}
