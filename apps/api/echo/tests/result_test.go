package tests

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	pdfsvc "github.com/trezcool/shule/services/pdf"
	"github.com/trezcool/shule/tests"
)

func resultListing(total int, rows []result.Result, filter result.Filter) result.Listing {
	items := result.Summarize(rows, filter)
	return result.Listing{ListingMeta: core.NewListingMeta(len(items), total), Items: items}
}

func seedResults(t *testing.T) []result.Result {
	t.Helper()
	lastYear := time.Now().UTC().AddDate(-1, 0, 0)
	return []result.Result{
		testutil.CreateResult(t, resultRepo, result.Result{StudentID: "CSC001", FirstName: "Ada", LastName: "Obi", Department: "Computer Science", Course: "CSC101", Score: 80}),
		testutil.CreateResult(t, resultRepo, result.Result{StudentID: "CSC001", FirstName: "Ada", LastName: "Obi", Department: "Computer Science", Course: "CSC102", Score: 60}),
		testutil.CreateResult(t, resultRepo, result.Result{StudentID: "ICT002", FirstName: "Bola", LastName: "Ige", Department: "ICT", Course: "Web Design", Score: 90}),
		testutil.CreateResult(t, resultRepo, result.Result{StudentID: "CSC0011", FirstName: "Tunde", LastName: "Ade", Department: "Computer Science", Course: "CSC101", Score: 45, CreatedAt: lastYear}),
	}
}

func Test_resultApi_query(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)
	rows := seedResults(t)
	thisYear := strconv.Itoa(time.Now().UTC().Year())

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/results", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/results", token: token, wantData: marshallObj(t, resultListing(4, rows, result.Filter{}))},
		{
			name: "student_id is a substring match", path: "/v1/results?student_id=CSC001", token: token,
			wantData: marshallObj(t, resultListing(4, rows, result.Filter{StudentID: "CSC001"})),
		},
		{name: "year", path: "/v1/results?year=" + thisYear, token: token, wantData: marshallObj(t, resultListing(4, rows, result.Filter{Year: thisYear}))},
		{name: "department", path: "/v1/results?department=ICT", token: token, wantData: marshallObj(t, resultListing(4, rows, result.Filter{Department: "ICT"}))},
		{name: "search", path: "/v1/results?search=ADE", token: token, wantData: marshallObj(t, resultListing(4, rows, result.Filter{Search: "ADE"}))},
		{name: "no match", path: "/v1/results?search=zzz", token: token, wantData: marshallObj(t, resultListing(4, rows, result.Filter{Search: "zzz"}))},
	})

	t.Run("aggregates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/results?student_id=CSC001&year="+thisYear, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var listing result.Listing
		decode(t, rec, &listing)
		assert.Equal(t, core.FetchOK, listing.State)
		require.Len(t, listing.Items, 1)
		assert.Equal(t, "CSC001", listing.Items[0].StudentID)
		assert.Equal(t, 2, listing.Items[0].CoursesCount)
		assert.Equal(t, 70.0, listing.Items[0].Score)
	})

	t.Run("snapshot", func(t *testing.T) {
		count := func(path string) int {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			var listing result.Listing
			decode(t, rec, &listing)
			return listing.Count
		}

		assert.Equal(t, 3, count("/v1/results"))
		testutil.CreateResult(t, resultRepo, result.Result{StudentID: "FSH003", FirstName: "Kemi", LastName: "Ade", Score: 75})
		assert.Equal(t, 3, count("/v1/results"), "served from the last fetched snapshot")
		assert.Equal(t, 4, count("/v1/results?refresh=true"))
	})
}

func Test_resultApi_create(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []string{user.RoleAdmin}, true)
	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	adminToken := getToken(t, admin)

	score := func(v float64) *float64 { return &v }
	sheet := result.NewResultSheet{
		StudentID: "CSC001", FirstName: "Ada", LastName: "Obi", Department: "Computer Science",
		AcademicSession: "2023/2024", Semester: "First",
		Courses: []result.CourseScore{
			{CourseCode: "CSC101", Score: score(85)},
			{CourseCode: "CSC102", Score: score(49.5), Grade: "f"},
		},
	}

	runTests(t, []httpTest{
		{
			name: "Admin required", method: http.MethodPost, path: "/v1/results", token: getToken(t, staff),
			body: marshallObj(t, sheet), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "invalid courses", method: http.MethodPost, path: "/v1/results", token: adminToken, wantCode: http.StatusBadRequest,
			body: marshallObj(t, result.NewResultSheet{
				StudentID: "CSC001", FirstName: "Ada", LastName: "Obi", Department: "Computer Science",
				Courses: []result.CourseScore{
					{CourseCode: "CSC101"},
					{CourseCode: "CSC102", Score: score(101)},
					{CourseCode: "CSC103", Score: score(75), Grade: "A"},
				},
			}),
			wantData: marshallObj(t, map[string]string{
				"courses[0].score": "this field is required",
				"courses[0].grade": "this field is required",
				"courses[1].score": "score must be between 0 and 100",
				"courses[1].grade": "this field is required",
				"courses[2].grade": "grade does not match the score",
			}),
		},
		{
			name: "duplicate courses", method: http.MethodPost, path: "/v1/results", token: adminToken, wantCode: http.StatusBadRequest,
			body: marshallObj(t, result.NewResultSheet{
				StudentID: "CSC001", FirstName: "Ada", LastName: "Obi", Department: "Computer Science",
				Courses:   []result.CourseScore{{CourseCode: "CSC101", Score: score(50)}, {CourseCode: "csc101", Score: score(60)}},
			}),
			wantData: marshallObj(t, map[string]string{"courses": "a course can only appear once per sheet"}),
		},
	})

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/results", adminToken, marshallObj(t, sheet))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var rows []result.Result
		decode(t, rec, &rows)
		require.Len(t, rows, 2)
		assert.NotEmpty(t, rows[0].ID)
		assert.Equal(t, "B", rows[0].Grade)
		assert.Equal(t, "F", rows[1].Grade)
		assert.Equal(t, "2023/2024", rows[1].AcademicSession)

		// the new rows are listed right away
		req, rec = newAuthRequest(http.MethodGet, "/v1/results/students/CSC001", adminToken)
		app.ServeHTTP(rec, req)
		var listing result.StudentListing
		decode(t, rec, &listing)
		assert.Equal(t, 2, listing.Count)
	})
}

func Test_resultApi_studentResultsAndDelete(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []string{user.RoleAdmin}, true)
	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	adminToken := getToken(t, admin)
	rows := seedResults(t)
	slashed := testutil.CreateResult(t, resultRepo, result.Result{StudentID: "CSC/2023/001", FirstName: "Ngozi", LastName: "Eze", Course: "CSC101", Score: 66})

	runTests(t, []httpTest{
		{
			name: "student ID with escaped slashes", path: "/v1/results/students/CSC%2F2023%2F001", token: getToken(t, staff),
			wantData: marshallObj(t, result.StudentListing{ListingMeta: core.NewListingMeta(1, 1), Items: []result.Result{slashed}}),
		},
		{
			name: "student results", path: "/v1/results/students/CSC001", token: getToken(t, staff),
			wantData: marshallObj(t, result.StudentListing{ListingMeta: core.NewListingMeta(2, 2), Items: rows[:2]}),
		},
		{
			name: "no results", path: "/v1/results/students/NOPE", token: getToken(t, staff),
			wantData: marshallObj(t, result.StudentListing{ListingMeta: core.NewListingMeta(0, 0), Items: []result.Result{}}),
		},
		{name: "Admin required", method: http.MethodDelete, path: "/v1/results/" + rows[0].ID, token: getToken(t, staff), wantCode: http.StatusForbidden},
		{name: "deleted", method: http.MethodDelete, path: "/v1/results/" + rows[0].ID, token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "unknown", method: http.MethodDelete, path: "/v1/results/" + rows[0].ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: result.ErrNotFound.Error()}),
		},
		{
			name: "student results after delete", path: "/v1/results/students/CSC001", token: adminToken,
			wantData: marshallObj(t, result.StudentListing{ListingMeta: core.NewListingMeta(1, 1), Items: rows[1:2]}),
		},
	})
}

func Test_resultApi_export(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)
	seedResults(t)
	testutil.CreateResult(t, resultRepo, result.Result{StudentID: "CSC/2023/001", FirstName: "Ngozi", LastName: "Eze", Course: "CSC101", Score: 66})
	today := time.Now().UTC().Format("20060102")

	tests := []struct {
		name     string
		path     string
		filename string
	}{
		{name: "results", path: "/v1/results/export", filename: "students_results_" + today + ".pdf"},
		{name: "filtered results", path: "/v1/results/export?department=ICT", filename: "students_results_" + today + ".pdf"},
		{name: "empty results", path: "/v1/results/export?search=zzz", filename: "students_results_" + today + ".pdf"},
		{name: "transcript", path: "/v1/results/students/CSC001/export", filename: "student_transcript_" + today + ".pdf"},
		{name: "transcript of a student ID with slashes", path: "/v1/results/students/CSC%2F2023%2F001/export", filename: "student_transcript_" + today + ".pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, rec.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
		})
	}

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/results/export", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "no transcript without results", path: "/v1/results/students/NOPE/export", token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: result.ErrNotFound.Error()}),
		},
	})
}

func Test_resultApi_emailTranscript(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []string{user.RoleAdmin}, true)
	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	adminToken := getToken(t, admin)
	seedResults(t)

	testutil.CreateLongCourseStudent(t, studentRepo, "CSC001", student.Profile{FirstName: "Ada", LastName: "Obi", Email: "ada@test.ng"})
	testutil.CreateShortCourseStudent(t, studentRepo, "ICT002", 2023, "First", student.Profile{FirstName: "Bola", LastName: "Ige"})

	runTests(t, []httpTest{
		{name: "Admin required", method: http.MethodPost, path: "/v1/results/students/CSC001/email", token: getToken(t, staff), wantCode: http.StatusForbidden},
		{
			name: "no results", method: http.MethodPost, path: "/v1/results/students/NOPE/email", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: result.ErrNotFound.Error()}),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/results/students/CSC0011/email", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student ID not found"}),
		},
		{
			name: "student without email", method: http.MethodPost, path: "/v1/results/students/ICT002/email", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"email": "student has no email address"}),
		},
	})

	t.Run("sent", func(t *testing.T) {
		emailsvc.ResetSentMessages()

		req, rec := newAuthRequest(http.MethodPost, "/v1/results/students/CSC001/email", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusAccepted,
			wantData: marshallObj(t, echoapi.SuccessResponse{Success: "Transcript sent to ada@test.ng."}),
		}, rec)

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "ada@test.ng", msg.To[0].Address)
		assert.Equal(t, "Ada Obi", msg.To[0].Name)
		assert.True(t, strings.Contains(msg.TextContent, "Ada Obi"))
		assert.True(t, strings.Contains(msg.TextContent, "70.00"))
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
		assert.True(t, strings.HasPrefix(msg.Attachments[0].Filename, "student_transcript_"))
	})
}

type failingResultRepo struct {
	result.Repository
}

var errStoreDown = errors.New("store down")

func (failingResultRepo) QueryResults(context.Context, []core.DBOrdering) ([]result.Result, error) {
	return nil, errStoreDown
}

func (failingResultRepo) QueryStudentResults(context.Context, string) ([]result.Result, error) {
	return nil, errStoreDown
}

func Test_resultApi_fetchFailure(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator(logger)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		MailSvc:    emailsvc.NewConsoleServiceMock(conf, logger),
		Renderer:   pdfsvc.NewRenderer(conf),
		UserSvc:    user.NewService(usrRepo, conf),
		StudentSvc: student.NewService(studentRepo, conf),
		ResultSvc:  result.NewService(failingResultRepo{}, conf),
	})

	token := getToken(t, staff)
	failed := core.FailedListingMeta(result.FetchFailedMsg)

	tests := []httpTest{
		{
			name: "listing", path: "/v1/results",
			wantData: marshallObj(t, result.Listing{ListingMeta: failed, Items: []result.StudentAggregate{}}),
		},
		{
			name: "student results", path: "/v1/results/students/CSC001",
			wantData: marshallObj(t, result.StudentListing{ListingMeta: failed, Items: []result.Result{}}),
		},
		{name: "export", path: "/v1/results/export", wantData: marshallObj(t, failed)},
		{name: "transcript export", path: "/v1/results/students/CSC001/export", wantData: marshallObj(t, failed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			server.ServeHTTP(rec, req)
			tt.wantCode = http.StatusServiceUnavailable
			checkCodeAndData(t, tt, rec)
		})
	}
}
