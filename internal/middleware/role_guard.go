package middleware

import (
	"net/http"

	"starfruit/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているuser_typeが期待ロールかどうかを確認します。

func RoleGuard(want model.UserType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Get(CtxUserTypeKey)
			utype, ok := raw.(string)
			if !ok || utype == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if model.UserType(utype) != want {
				return c.JSON(http.StatusForbidden, errorJSON(string(want)+" only"))
			}

			return next(c)
		}
	}
}
