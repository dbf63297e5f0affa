package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Programmes
const (
	ProgrammeLong  = "long"
	ProgrammeShort = "short"
)

var Quarters = []string{"First", "Second", "Third", "Fourth"}

// Profile holds the personal & academic fields shared by all students.
type Profile struct {
	FirstName  string `json:"first_name" validate:"required,notblank"`
	LastName   string `json:"last_name" validate:"required,notblank"`
	Sex        string `json:"sex"`
	DOB        string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Address    string `json:"address"`
	Department string `json:"department"`
	Course     string `json:"course"`
	PhotoURL   string `json:"photo_url" validate:"omitempty,url"`
}

func (p *Profile) Clean() {
	p.FirstName = core.CleanString(p.FirstName)
	p.LastName = core.CleanString(p.LastName)
	p.Sex = core.CleanString(p.Sex, true /* lower */)
	p.DOB = core.CleanString(p.DOB)
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Phone = core.CleanString(p.Phone)
	p.Address = core.CleanString(p.Address)
	p.Department = core.CleanString(p.Department)
	p.Course = core.CleanString(p.Course)
	p.PhotoURL = core.CleanString(p.PhotoURL)
}

func (p Profile) FullName() string {
	return core.CleanString(p.FirstName + " " + p.LastName)
}

type LongCourseStudent struct {
	ID           string `json:"id"`
	MatricNumber string `json:"matric_number"`
	Profile
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type ShortCourseStudent struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Year      int    `json:"year"`
	Quarter   string `json:"quarter"`
	Profile
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// LongCourseInput is the information needed to create or replace a LongCourseStudent.
type LongCourseInput struct {
	MatricNumber string `json:"matric_number" validate:"required,notblank"`
	Profile
}

func (in *LongCourseInput) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface, exclID ...string) error {
	in.MatricNumber = core.CleanString(in.MatricNumber)
	in.Profile.Clean()

	if err := validate.Struct(in); err != nil {
		return err
	}
	return svc.CheckStudentNumber(ctx, "matric_number", in.MatricNumber, exclID...)
}

// ShortCourseInput is the information needed to create or replace a ShortCourseStudent.
type ShortCourseInput struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Year      int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Quarter   string `json:"quarter" validate:"required,quarter"`
	Profile
}

func (in *ShortCourseInput) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface, exclID ...string) error {
	in.StudentID = core.CleanString(in.StudentID)
	in.Quarter = core.CleanString(in.Quarter)
	in.Profile.Clean()

	if err := validate.Struct(in); err != nil {
		return err
	}
	return svc.CheckStudentNumber(ctx, "student_id", in.StudentID, exclID...)
}

// GetFilter selects a single student, by ID or by student number
// (matric number for long-course students, student ID for short-course students).
type GetFilter struct {
	ID     string
	Number string
}

// Lookup is the summary of a student found by number, used to prefill result sheets.
type Lookup struct {
	ID         string `json:"id"`
	Programme  string `json:"programme"`
	StudentID  string `json:"student_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Course     string `json:"course"`
}

type (
	LongCourseListing struct {
		core.ListingMeta
		Items []LongCourseStudent `json:"items"`
	}

	ShortCourseListing struct {
		core.ListingMeta
		Items []ShortCourseStudent `json:"items"`
	}
)
