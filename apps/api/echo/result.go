package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
	"github.com/trezcool/shule/core/student"
)

var errNoStudentEmail = "student has no email address"

type resultApi struct {
	svc        result.ServiceInterface
	studentSvc student.ServiceInterface
	mailSvc    core.EmailService
	renderer   result.Renderer
	validate   *validator.Validate
	logger     core.Logger
}

func registerResultAPI(g *echo.Group, jwt echo.MiddlewareFunc, api resultApi) {
	rg := g.Group("/results", jwt)
	rg.GET("", api.query)
	rg.POST("", api.create, adminMiddleware())
	rg.GET("/export", api.export)
	rg.DELETE("/:id", api.destroy, adminMiddleware())

	sg := rg.Group("/students/:student_id")
	sg.GET("", api.studentResults)
	sg.GET("/export", api.exportTranscript)
	sg.POST("/email", api.emailTranscript, adminMiddleware())
}

func bindResultFilter(ctx echo.Context) result.Filter {
	var filter result.Filter
	bindQuery(ctx, &filter)
	filter.Clean()
	return filter
}

// Handlers

// query lists the student aggregates; ?refresh=true bypasses the last fetched snapshot.
func (api *resultApi) query(ctx echo.Context) error {
	filter := bindResultFilter(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	listing, err := api.svc.ListAggregated(ctx.Request().Context(), filter, ordering.Orderings, boolParam(ctx, refreshParam))
	if err != nil {
		return failedListing(ctx, api.logger, err, listing)
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *resultApi) create(ctx echo.Context) error {
	var data result.NewResultSheet
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResultSheet")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rows, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating results")
	}
	return ctx.JSON(http.StatusCreated, rows)
}

func (api *resultApi) destroy(ctx echo.Context) error {
	r, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding result")
	}
	if err := api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resultApi) studentResults(ctx echo.Context) error {
	listing, err := api.svc.StudentResults(ctx.Request().Context(), studentIDParam(ctx))
	if err != nil {
		return failedListing(ctx, api.logger, err, listing)
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (api *resultApi) export(ctx echo.Context) error {
	doc, err := api.svc.SummaryReport(ctx.Request().Context(), bindResultFilter(ctx))
	if err != nil {
		return api.failedReport(ctx, err)
	}
	return api.attachment(ctx, doc)
}

func (api *resultApi) exportTranscript(ctx echo.Context) error {
	doc, err := api.svc.TranscriptReport(ctx.Request().Context(), studentIDParam(ctx))
	if err != nil {
		if errors.Cause(err) == result.ErrNotFound {
			return err
		}
		return api.failedReport(ctx, err)
	}
	return api.attachment(ctx, doc)
}

// emailTranscript sends the transcript PDF of a student to the student's email address.
func (api *resultApi) emailTranscript(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	studentID := studentIDParam(ctx)

	listing, err := api.svc.StudentResults(reqCtx, studentID)
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	if len(listing.Items) == 0 {
		return result.ErrNotFound
	}

	recipient, err := api.studentSvc.Lookup(reqCtx, studentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errStudentNumberNotFound
		}
		return errors.Wrap(err, "looking up student")
	}
	if recipient.Email == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: errNoStudentEmail})
	}

	doc := result.NewTranscriptDocument(listing.Items, time.Now().UTC())
	var buf bytes.Buffer
	if err := api.renderer.Render(&buf, doc); err != nil {
		return errors.Wrap(err, "rendering transcript")
	}

	agg := result.Aggregate(listing.Items)[0]
	name := core.CleanString(recipient.FirstName + " " + recipient.LastName)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: recipient.Email}},
		Subject:      "Transcript",
		TemplateName: "transcript",
		TemplateData: transcriptMailData{Name: name, CoursesCount: agg.CoursesCount, Score: agg.Score},
	}
	if err := msg.Attach(&buf, doc.Filename(api.renderer.Extension()), api.renderer.ContentType()); err != nil {
		return errors.Wrap(err, "attaching transcript")
	}
	api.mailSvc.SendMessages(msg)

	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: fmt.Sprintf("Transcript sent to %s.", recipient.Email)})
}

// failedReport answers a report whose rows could not be fetched, like a failed listing.
func (api *resultApi) failedReport(ctx echo.Context, err error) error {
	return failedListing(ctx, api.logger, err, core.FailedListingMeta(result.FetchFailedMsg))
}

// attachment renders doc and sends it as a file download.
func (api *resultApi) attachment(ctx echo.Context, doc result.Document) error {
	var buf bytes.Buffer
	if err := api.renderer.Render(&buf, doc); err != nil {
		return errors.Wrap(err, "rendering "+doc.Title)
	}
	filename := doc.Filename(api.renderer.Extension())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, api.renderer.ContentType(), buf.Bytes())
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	transcriptMailData struct {
		Name         string
		CoursesCount int
		Score        float64
	}
)
