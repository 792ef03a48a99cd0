package middleware

// identity.go holds helpers shared across middleware files.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or "anon".
// JWTAuth stores the id as uint64; other numeric and string forms are
// accepted as well.
func currentUserID(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case nil:
		return "anon"
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
