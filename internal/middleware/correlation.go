package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/logger"
)

// HeaderCorrelationID is read from requests and echoed on responses.
const HeaderCorrelationID = "X-Correlation-Id"

// CorrelationID stores the caller's correlation id (or a new UUID) in the
// request context so every log line of the request carries it.
func CorrelationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(HeaderCorrelationID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.SetRequest(req.WithContext(logger.WithCorrelationID(req.Context(), id)))
			c.Response().Header().Set(HeaderCorrelationID, id)
			return next(c)
		}
	}
}
