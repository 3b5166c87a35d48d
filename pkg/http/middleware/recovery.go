package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "SalesCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover converts a handler panic into a 500 in the API envelope. Nothing is
// written when the handler already committed a response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				if l != nil {
					l.Error("handler panic",
						applogger.String("method", c.Request().Method),
						applogger.String("route", c.Path()),
						applogger.String("panic", fmt.Sprint(r)),
						applogger.String("stack", string(debug.Stack())),
					)
				}
				if !c.Response().Committed {
					err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
