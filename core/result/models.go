package result

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Result is the score of one student in one course.
type Result struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Department      string    `json:"department"`
	Course          string    `json:"course"`
	Score           float64   `json:"score"`
	Grade           string    `json:"grade"`
	AcademicSession string    `json:"academic_session"`
	Semester        string    `json:"semester"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// StudentAggregate summarizes the results of one student.
// It is derived from Result rows and never persisted.
type StudentAggregate struct {
	StudentID       string    `json:"student_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Department      string    `json:"department"`
	Course          string    `json:"course"`
	AcademicSession string    `json:"academic_session"`
	Semester        string    `json:"semester"`
	CreatedAt       time.Time `json:"created_at"`
	CoursesCount    int       `json:"courses_count"`
	Score           float64   `json:"score"` // mean score
}

func (agg StudentAggregate) FullName() string {
	return core.CleanString(agg.FirstName + " " + agg.LastName)
}

// CourseScore is one line of a result sheet.
type CourseScore struct {
	CourseCode string   `json:"course_code" validate:"required,notblank"`
	Score      *float64 `json:"score" validate:"required,score,score_decimals"`
	Grade      string   `json:"grade" validate:"required,oneof=A B C D E F"`
}

// NewResultSheet holds the results of one student for several courses.
type NewResultSheet struct {
	StudentID       string        `json:"student_id" validate:"required,notblank"`
	FirstName       string        `json:"first_name" validate:"required,notblank"`
	LastName        string        `json:"last_name" validate:"required,notblank"`
	Department      string        `json:"department" validate:"required,notblank"`
	AcademicSession string        `json:"academic_session"`
	Semester        string        `json:"semester"`
	Courses         []CourseScore `json:"courses" validate:"required,min=1,dive"`
}

// Validate cleans the sheet, fills in missing grades from scores, then validates it.
func (sheet *NewResultSheet) Validate(validate *validator.Validate) error {
	sheet.StudentID = core.CleanString(sheet.StudentID)
	sheet.FirstName = core.CleanString(sheet.FirstName)
	sheet.LastName = core.CleanString(sheet.LastName)
	sheet.Department = core.CleanString(sheet.Department)
	sheet.AcademicSession = core.CleanString(sheet.AcademicSession)
	sheet.Semester = core.CleanString(sheet.Semester)

	for i := range sheet.Courses {
		c := &sheet.Courses[i]
		c.CourseCode = core.CleanString(c.CourseCode)
		c.Grade = strings.ToUpper(core.CleanString(c.Grade))
		if c.Grade == "" && c.Score != nil && ValidScore(*c.Score) {
			c.Grade = GradeFor(*c.Score)
		}
	}
	return validate.Struct(sheet)
}

// Rows expands the sheet into one Result per course.
func (sheet NewResultSheet) Rows(now time.Time) []Result {
	rows := make([]Result, 0, len(sheet.Courses))
	for _, c := range sheet.Courses {
		var score float64
		if c.Score != nil {
			score = *c.Score
		}
		rows = append(rows, Result{
			StudentID:       sheet.StudentID,
			FirstName:       sheet.FirstName,
			LastName:        sheet.LastName,
			Department:      sheet.Department,
			Course:          c.CourseCode,
			Score:           score,
			Grade:           c.Grade,
			AcademicSession: sheet.AcademicSession,
			Semester:        sheet.Semester,
			CreatedAt:       now,
		})
	}
	return rows
}

type (
	Listing struct {
		core.ListingMeta
		Items []StudentAggregate `json:"items"`
	}

	StudentListing struct {
		core.ListingMeta
		Items []Result `json:"items"`
	}
)
