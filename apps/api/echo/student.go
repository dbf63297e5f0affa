package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

var errStudentNumberNotFound = echo.NewHTTPError(http.StatusNotFound, "student ID not found")

type studentApi struct {
	svc      student.ServiceInterface
	validate *validator.Validate
	logger   core.Logger
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, api studentApi) {
	sg := g.Group("/students", jwt)
	sg.GET("/lookup", api.lookup)

	lg := sg.Group("/long")
	lg.GET("", api.queryLong)
	lg.POST("", api.createLong, adminMiddleware())
	lg.GET("/:id", api.retrieveLong)
	lg.PUT("/:id", api.updateLong, adminMiddleware())
	lg.DELETE("/:id", api.destroyLong, adminMiddleware())

	shg := sg.Group("/short")
	shg.GET("", api.queryShort)
	shg.POST("", api.createShort, adminMiddleware())
	shg.GET("/:id", api.retrieveShort)
	shg.PUT("/:id", api.updateShort, adminMiddleware())
	shg.DELETE("/:id", api.destroyShort, adminMiddleware())
}

// Long-course handlers

func (api *studentApi) queryLong(ctx echo.Context) error {
	var filter student.LongCourseFilter
	bindQuery(ctx, &filter)
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	listing, err := api.svc.ListLongCourse(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return failedListing(ctx, api.logger, err, listing)
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *studentApi) createLong(ctx echo.Context) error {
	var data student.LongCourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LongCourseInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.CreateLongCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating long-course student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieveLong(ctx echo.Context) error {
	s, err := api.svc.GetLongCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding long-course student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) updateLong(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetLongCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding long-course student")
	}

	var data student.LongCourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LongCourseInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, id); err != nil {
		return err
	}

	s, err := api.svc.UpdateLongCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating long-course student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroyLong(ctx echo.Context) error {
	s, err := api.svc.GetLongCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding long-course student")
	}
	if err := api.svc.DeleteLongCourse(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting long-course student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Short-course handlers

func (api *studentApi) queryShort(ctx echo.Context) error {
	var filter student.ShortCourseFilter
	bindQuery(ctx, &filter)
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	listing, err := api.svc.ListShortCourse(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return failedListing(ctx, api.logger, err, listing)
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *studentApi) createShort(ctx echo.Context) error {
	var data student.ShortCourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShortCourseInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.CreateShortCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating short-course student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieveShort(ctx echo.Context) error {
	s, err := api.svc.GetShortCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding short-course student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) updateShort(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetShortCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding short-course student")
	}

	var data student.ShortCourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShortCourseInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, id); err != nil {
		return err
	}

	s, err := api.svc.UpdateShortCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating short-course student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroyShort(ctx echo.Context) error {
	s, err := api.svc.GetShortCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding short-course student")
	}
	if err := api.svc.DeleteShortCourse(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting short-course student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// lookup finds a student of any programme by number, for the result entry form.
func (api *studentApi) lookup(ctx echo.Context) error {
	found, err := api.svc.Lookup(ctx.Request().Context(), ctx.QueryParam("student_id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNumberNotFound
		}
		return errors.Wrap(err, "looking up student")
	}
	return ctx.JSON(http.StatusOK, found)
}
