package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/tests"
)

func longListing(total int, items ...student.LongCourseStudent) student.LongCourseListing {
	if items == nil {
		items = []student.LongCourseStudent{}
	}
	return student.LongCourseListing{ListingMeta: core.NewListingMeta(len(items), total), Items: items}
}

func shortListing(total int, items ...student.ShortCourseStudent) student.ShortCourseListing {
	if items == nil {
		items = []student.ShortCourseStudent{}
	}
	return student.ShortCourseListing{ListingMeta: core.NewListingMeta(len(items), total), Items: items}
}

func Test_studentApi_queryLong(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	ada := testutil.CreateLongCourseStudent(t, studentRepo, "CSC/2021/001", student.Profile{
		FirstName: "Ada", LastName: "Obi", Department: "Computer Science", Course: "Software Engineering",
	})
	tunde := testutil.CreateLongCourseStudent(t, studentRepo, "CSC/2021/002", student.Profile{
		FirstName: "Tunde", LastName: "Adeyemi", Department: "Computer Science", Course: "Networking",
	})
	ngozi := testutil.CreateLongCourseStudent(t, studentRepo, "BUS/2021/001", student.Profile{
		FirstName: "Ngozi", LastName: "Eze", Department: "Business Administration", Course: "Marketing",
	})

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/students/long", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/students/long", token: token, wantData: marshallObj(t, longListing(3, ada, tunde, ngozi))},
		{name: "search first name", path: "/v1/students/long?search=ADA", token: token, wantData: marshallObj(t, longListing(3, ada))},
		{name: "search matric number", path: "/v1/students/long?search=bus/", token: token, wantData: marshallObj(t, longListing(3, ngozi))},
		{name: "department", path: "/v1/students/long?department=computer", token: token, wantData: marshallObj(t, longListing(3, ada, tunde))},
		{
			name: "department AND course", path: "/v1/students/long?department=Computer+Science&course=Networking", token: token,
			wantData: marshallObj(t, longListing(3, tunde)),
		},
		{name: "no match is empty, not failed", path: "/v1/students/long?search=zzz", token: token, wantData: marshallObj(t, longListing(3))},
		{name: "order by -last_name", path: "/v1/students/long?ordering=-last_name", token: token, wantData: marshallObj(t, longListing(3, ada, ngozi, tunde))},
		{name: "retrieve", path: "/v1/students/long/" + ada.ID, token: token, wantData: marshallObj(t, ada)},
		{name: "retrieve unknown", path: "/v1/students/long/lol", token: token, wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: student.ErrNotFound.Error()})},
	})
}

func Test_studentApi_writeLong(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []string{user.RoleAdmin}, true)
	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	adminToken := getToken(t, admin)

	testutil.CreateShortCourseStudent(t, studentRepo, "ICT/001", 2023, "First", student.Profile{FirstName: "Bola", LastName: "Ige"})

	valid := student.LongCourseInput{
		MatricNumber: " CSC/2021/001 ",
		Profile: student.Profile{
			FirstName: "Ada", LastName: "Obi", Sex: "Female", DOB: "2001-02-03", Email: "Ada@Test.ng",
			Phone: "+234 803 000 0000", Department: "Computer Science", Course: "Networking",
		},
	}
	reqMsg := "this field is required"

	runTests(t, []httpTest{
		{
			name: "Admin required", method: http.MethodPost, path: "/v1/students/long", token: getToken(t, staff),
			body: marshallObj(t, valid), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/students/long", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"matric_number": reqMsg, "first_name": reqMsg, "last_name": reqMsg}),
		},
		{
			name: "invalid fields", method: http.MethodPost, path: "/v1/students/long", token: adminToken, wantCode: http.StatusBadRequest,
			body: marshallObj(t, student.LongCourseInput{
				MatricNumber: "CSC/2021/009",
				Profile:      student.Profile{FirstName: "Ada", LastName: "Obi", Sex: "x", DOB: "03/02/2001", Email: "lol", Phone: "call me"},
			}),
			wantData: marshallObj(t, map[string]string{
				"dob":   "dob must be a valid date (YYYY-MM-DD)",
				"email": "email must be a valid email address",
				"phone": "phone must be a valid phone number",
				"sex":   "sex must be one of: male, female",
			}),
		},
		{
			name: "number taken by a short-course student", method: http.MethodPost, path: "/v1/students/long", token: adminToken,
			body: marshallObj(t, student.LongCourseInput{MatricNumber: "ICT/001", Profile: student.Profile{FirstName: "A", LastName: "B"}}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"matric_number": student.ErrNumberExists.Error()}),
		},
	})

	var created student.LongCourseStudent
	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/long", adminToken, marshallObj(t, valid))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		decode(t, rec, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "CSC/2021/001", created.MatricNumber)
		assert.Equal(t, "female", created.Sex)
		assert.Equal(t, "ada@test.ng", created.Email)
	})

	t.Run("updated", func(t *testing.T) {
		upd := valid
		upd.Course = "Software Engineering"
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/long/"+created.ID, adminToken, marshallObj(t, upd))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated student.LongCourseStudent
		decode(t, rec, &updated)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Software Engineering", updated.Course)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	})

	runTests(t, []httpTest{
		{
			name: "update unknown", method: http.MethodPut, path: "/v1/students/long/lol", token: adminToken,
			body: marshallObj(t, valid), wantCode: http.StatusNotFound,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/students/long/" + created.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "delete again", method: http.MethodDelete, path: "/v1/students/long/" + created.ID, token: adminToken, wantCode: http.StatusNotFound},
	})
}

func Test_studentApi_short(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	bola := testutil.CreateShortCourseStudent(t, studentRepo, "ICT/001", 2023, "First", student.Profile{
		FirstName: "Bola", LastName: "Ige", Department: "ICT", Course: "Web Design",
	})
	kemi := testutil.CreateShortCourseStudent(t, studentRepo, "CAT/001", 2024, "Second", student.Profile{
		FirstName: "Kemi", LastName: "Ade", Department: "Catering", Course: "Pastry",
	})

	runTests(t, []httpTest{
		{name: "Get all", path: "/v1/students/short", token: adminToken, wantData: marshallObj(t, shortListing(2, bola, kemi))},
		{name: "year", path: "/v1/students/short?year=2024", token: adminToken, wantData: marshallObj(t, shortListing(2, kemi))},
		{name: "quarter", path: "/v1/students/short?quarter=first", token: adminToken, wantData: marshallObj(t, shortListing(2, bola))},
		{
			name: "department AND course", path: "/v1/students/short?department=ICT&course=pastry", token: adminToken,
			wantData: marshallObj(t, shortListing(2)),
		},
		{name: "retrieve", path: "/v1/students/short/" + kemi.ID, token: adminToken, wantData: marshallObj(t, kemi)},
		{
			name: "invalid quarter", method: http.MethodPost, path: "/v1/students/short", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marshallObj(t, student.ShortCourseInput{StudentID: "ICT/002", Year: 2024, Quarter: "Fifth", Profile: student.Profile{FirstName: "A", LastName: "B"}}),
			wantData: marshallObj(t, map[string]string{"quarter": "quarter must be one of First, Second, Third or Fourth"}),
		},
		{
			name: "created", method: http.MethodPost, path: "/v1/students/short", token: adminToken, wantCode: http.StatusCreated,
			body: marshallObj(t, student.ShortCourseInput{StudentID: "ICT/002", Year: 2024, Quarter: "Third", Profile: student.Profile{FirstName: "A", LastName: "B"}}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/students/short/" + bola.ID, token: adminToken, wantCode: http.StatusNoContent},
	})

	t.Run("year out of range", func(t *testing.T) {
		body := marshallObj(t, student.ShortCourseInput{StudentID: "ICT/003", Year: 1999, Quarter: "First", Profile: student.Profile{FirstName: "A", LastName: "B"}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/short", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var errs map[string]string
		decode(t, rec, &errs)
		assert.Len(t, errs, 1)
		assert.Contains(t, errs, "year")
	})
}

func Test_studentApi_lookup(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	ada := testutil.CreateLongCourseStudent(t, studentRepo, "CSC/2021/001", student.Profile{
		FirstName: "Ada", LastName: "Obi", Email: "ada@test.ng", Department: "Computer Science", Course: "Networking",
	})
	bola := testutil.CreateShortCourseStudent(t, studentRepo, "ICT/001", 2023, "First", student.Profile{
		FirstName: "Bola", LastName: "Ige", Department: "ICT", Course: "Web Design",
	})
	notFound := marshallObj(t, httpErr{Error: "student ID not found"})

	runTests(t, []httpTest{
		{
			name: "long course", path: "/v1/students/lookup?student_id=CSC/2021/001", token: token,
			wantData: marshallObj(t, student.Lookup{
				ID: ada.ID, Programme: student.ProgrammeLong, StudentID: "CSC/2021/001", FirstName: "Ada", LastName: "Obi",
				Email: "ada@test.ng", Department: "Computer Science", Course: "Networking",
			}),
		},
		{
			name: "short course", path: "/v1/students/lookup?student_id=ICT/001", token: token,
			wantData: marshallObj(t, student.Lookup{
				ID: bola.ID, Programme: student.ProgrammeShort, StudentID: "ICT/001", FirstName: "Bola", LastName: "Ige",
				Department: "ICT", Course: "Web Design",
			}),
		},
		{name: "unknown", path: "/v1/students/lookup?student_id=ICT/999", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "empty", path: "/v1/students/lookup", token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func Test_catalogApi(t *testing.T) {
	resetDB()

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.ng", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/catalog/departments", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "short departments", path: "/v1/catalog/departments?programme=short", token: token, wantData: marshallObj(t, student.Departments("short"))},
		{name: "unknown programme", path: "/v1/catalog/departments?programme=lol", token: token, wantData: marshallList(t)},
		{name: "courses", path: "/v1/catalog/courses?department=Catering", token: token, wantData: marshallObj(t, student.Courses("Catering"))},
		{name: "quarters", path: "/v1/catalog/quarters", token: token, wantData: marshallObj(t, student.QuarterOptions())},
	})
}
