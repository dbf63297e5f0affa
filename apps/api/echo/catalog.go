package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/student"
)

// registerCatalogAPI exposes the option lists behind the filter selects.
func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	cg := g.Group("/catalog", jwt)
	cg.GET("/departments", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, student.Departments(ctx.QueryParam("programme")))
	})
	cg.GET("/courses", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, student.Courses(ctx.QueryParam("department")))
	})
	cg.GET("/quarters", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, student.QuarterOptions())
	})
}
