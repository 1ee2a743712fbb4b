package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"SMCTrader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a panicking handler into the standard error envelope with an
// internal status. Nothing is written if the handler already sent headers.
func Recover(l *logger.Logger) echo.MiddlewareFunc {
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
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("panic recovered",
					logger.String("request_id", GetRequestID(c)),
					logger.String("route", c.Path()),
					logger.Error(perr),
					logger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					err = perr
					return
				}
				err = c.JSON(http.StatusOK, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
					"data": []map[string]string{{
						"code":    "ERR_INTERNAL",
						"message": "Something went wrong",
					}},
				})
			}()
			return next(c)
		}
	}
}
