package student

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

// fakeRepo is a minimal in-memory Repository.
type fakeRepo struct {
	long    []LongCourseStudent
	short   []ShortCourseStudent
	seq     int
	failing bool
}

var _ Repository = (*fakeRepo)(nil)

var errUnavailable = errors.New("store unavailable")

func (r *fakeRepo) nextID() string {
	r.seq++
	return strconv.Itoa(r.seq)
}

func (r *fakeRepo) CreateLongCourseStudent(_ context.Context, s LongCourseStudent) (LongCourseStudent, error) {
	s.ID = r.nextID()
	r.long = append(r.long, s)
	return s, nil
}

func (r *fakeRepo) QueryLongCourseStudents(context.Context, []core.DBOrdering) ([]LongCourseStudent, error) {
	if r.failing {
		return nil, errUnavailable
	}
	return append([]LongCourseStudent(nil), r.long...), nil
}

func (r *fakeRepo) GetLongCourseStudent(ctx context.Context, filter GetFilter) (LongCourseStudent, error) {
	if err := ctx.Err(); err != nil {
		return LongCourseStudent{}, err
	}
	for _, s := range r.long {
		if (filter.ID != "" && s.ID == filter.ID) || (filter.Number != "" && s.MatricNumber == filter.Number) {
			return s, nil
		}
	}
	return LongCourseStudent{}, ErrNotFound
}

func (r *fakeRepo) UpdateLongCourseStudent(_ context.Context, s LongCourseStudent) (LongCourseStudent, error) {
	for i := range r.long {
		if r.long[i].ID == s.ID {
			s.CreatedAt = r.long[i].CreatedAt
			r.long[i] = s
			return s, nil
		}
	}
	return LongCourseStudent{}, ErrNotFound
}

func (r *fakeRepo) DeleteLongCourseStudents(_ context.Context, ids ...string) error {
	kept := r.long[:0]
	for _, s := range r.long {
		if !contains(ids, s.ID) {
			kept = append(kept, s)
		}
	}
	r.long = kept
	return nil
}

func (r *fakeRepo) CreateShortCourseStudent(_ context.Context, s ShortCourseStudent) (ShortCourseStudent, error) {
	s.ID = r.nextID()
	r.short = append(r.short, s)
	return s, nil
}

func (r *fakeRepo) QueryShortCourseStudents(context.Context, []core.DBOrdering) ([]ShortCourseStudent, error) {
	if r.failing {
		return nil, errUnavailable
	}
	return append([]ShortCourseStudent(nil), r.short...), nil
}

func (r *fakeRepo) GetShortCourseStudent(_ context.Context, filter GetFilter) (ShortCourseStudent, error) {
	for _, s := range r.short {
		if (filter.ID != "" && s.ID == filter.ID) || (filter.Number != "" && s.StudentID == filter.Number) {
			return s, nil
		}
	}
	return ShortCourseStudent{}, ErrNotFound
}

func (r *fakeRepo) UpdateShortCourseStudent(_ context.Context, s ShortCourseStudent) (ShortCourseStudent, error) {
	for i := range r.short {
		if r.short[i].ID == s.ID {
			s.CreatedAt = r.short[i].CreatedAt
			r.short[i] = s
			return s, nil
		}
	}
	return ShortCourseStudent{}, ErrNotFound
}

func (r *fakeRepo) DeleteShortCourseStudents(_ context.Context, ids ...string) error {
	kept := r.short[:0]
	for _, s := range r.short {
		if !contains(ids, s.ID) {
			kept = append(kept, s)
		}
	}
	r.short = kept
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func newTestService() (*fakeRepo, ServiceInterface) {
	repo := &fakeRepo{}
	return repo, NewService(repo, &core.Config{Database: core.DatabaseConfig{QueryTimeout: time.Second}})
}

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func fieldErrors(t *testing.T, err error, translator ut.Translator) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "want validator.ValidationErrors, got %T", err)
	errs := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		errs[fe.Field()] = fe.Translate(translator)
	}
	return errs
}

func TestLongCourseInput_Validate(t *testing.T) {
	validate, translator := newValidator()
	_, svc := newTestService()

	valid := func() LongCourseInput {
		return LongCourseInput{
			MatricNumber: " CSC/2020/001 ",
			Profile: Profile{
				FirstName: "Ada",
				LastName:  "Obi",
				Sex:       "Female",
				DOB:       "2001-04-12",
				Email:     "ADA@test.ng",
				Phone:     "+234 803 123 4567",
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		in := valid()
		require.NoError(t, in.Validate(context.Background(), validate, svc))
		assert.Equal(t, "CSC/2020/001", in.MatricNumber)
		assert.Equal(t, "female", in.Sex)
		assert.Equal(t, "ada@test.ng", in.Email)
	})

	t.Run("required", func(t *testing.T) {
		in := LongCourseInput{Profile: Profile{FirstName: "   "}}
		errs := fieldErrors(t, in.Validate(context.Background(), validate, svc), translator)
		assert.Equal(t, map[string]string{
			"matric_number": "this field is required",
			"first_name":    "this field is required",
			"last_name":     "this field is required",
		}, errs)
	})

	t.Run("invalid values", func(t *testing.T) {
		in := valid()
		in.Sex = "other"
		in.DOB = "12/04/2001"
		in.Phone = "call me"
		in.Email = "ada"
		errs := fieldErrors(t, in.Validate(context.Background(), validate, svc), translator)
		assert.Equal(t, sexText, errs["sex"])
		assert.Equal(t, "dob must be a valid date (YYYY-MM-DD)", errs["dob"])
		assert.Equal(t, phoneText, errs["phone"])
		assert.Contains(t, errs, "email")
	})
}

func TestShortCourseInput_Validate(t *testing.T) {
	validate, translator := newValidator()
	_, svc := newTestService()

	in := ShortCourseInput{
		StudentID: "SC-001",
		Year:      1999,
		Quarter:   "Fifth",
		Profile:   Profile{FirstName: "Ada", LastName: "Obi"},
	}
	errs := fieldErrors(t, in.Validate(context.Background(), validate, svc), translator)
	assert.Equal(t, quarterText, errs["quarter"])
	assert.Contains(t, errs, "year")
	assert.Len(t, errs, 2)

	in.Year, in.Quarter = 2024, "Second"
	assert.NoError(t, in.Validate(context.Background(), validate, svc))
}

func TestService_CheckStudentNumber(t *testing.T) {
	validate, _ := newValidator()
	_, svc := newTestService()
	ctx := context.Background()

	lcs, err := svc.CreateLongCourse(ctx, LongCourseInput{MatricNumber: "CSC/001", Profile: Profile{FirstName: "Ada", LastName: "Obi"}})
	require.NoError(t, err)

	// a short-course student cannot reuse a matric number
	in := ShortCourseInput{StudentID: "CSC/001", Year: 2024, Quarter: "First", Profile: Profile{FirstName: "Tunde", LastName: "Ade"}}
	err = in.Validate(context.Background(), validate, svc)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "student_id", vErr.Fields[0].Field)
	assert.Equal(t, ErrNumberExists, vErr.Err)

	// the owner keeps its number on update
	lin := LongCourseInput{MatricNumber: "CSC/001", Profile: Profile{FirstName: "Ada", LastName: "Obi"}}
	assert.NoError(t, lin.Validate(context.Background(), validate, svc, lcs.ID))
	assert.Error(t, lin.Validate(context.Background(), validate, svc))
}

func TestService_CheckStudentNumber_Canceled(t *testing.T) {
	validate, _ := newValidator()
	_, svc := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.CheckStudentNumber(ctx, "matric_number", "CSC/002")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	in := LongCourseInput{MatricNumber: "CSC/002", Profile: Profile{FirstName: "Ada", LastName: "Obi"}}
	assert.True(t, errors.Is(in.Validate(ctx, validate, svc), context.Canceled))
}

func TestService_Lookup(t *testing.T) {
	_, svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateShortCourse(ctx, ShortCourseInput{
		StudentID: "SC-9", Year: 2024, Quarter: "First",
		Profile: Profile{FirstName: "Tunde", LastName: "Ade", Department: "ICT", Course: "Web Design"},
	})
	require.NoError(t, err)

	got, err := svc.Lookup(ctx, " SC-9 ")
	require.NoError(t, err)
	assert.Equal(t, ProgrammeShort, got.Programme)
	assert.Equal(t, "SC-9", got.StudentID)
	assert.Equal(t, "Web Design", got.Course)

	_, err = svc.Lookup(ctx, "SC-10")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.Lookup(ctx, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_ListShortCourse(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()

	for i, q := range []string{"First", "Second", "First"} {
		_, err := svc.CreateShortCourse(ctx, ShortCourseInput{
			StudentID: "SC-" + strconv.Itoa(i), Year: 2024, Quarter: q,
			Profile: Profile{FirstName: "F", LastName: "L"},
		})
		require.NoError(t, err)
	}

	listing, err := svc.ListShortCourse(ctx, ShortCourseFilter{Quarter: "first"}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.FetchOK, listing.State)
	assert.Equal(t, 2, listing.Count)
	assert.Equal(t, 3, listing.Total)

	listing, err = svc.ListShortCourse(ctx, ShortCourseFilter{Quarter: "fourth"}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.FetchEmpty, listing.State)
	assert.Empty(t, listing.Items)

	repo.failing = true
	listing, err = svc.ListShortCourse(ctx, ShortCourseFilter{}, nil)
	assert.True(t, errors.Is(err, errUnavailable))
	assert.True(t, listing.Failed())
	assert.Equal(t, fetchFailedMsg, listing.Error)
	assert.NotNil(t, listing.Items)
}

func TestService_UpdateAndDeleteLongCourse(t *testing.T) {
	_, svc := newTestService()
	ctx := context.Background()

	s, err := svc.CreateLongCourse(ctx, LongCourseInput{MatricNumber: "CSC/002", Profile: Profile{FirstName: "Ada", LastName: "Obi"}})
	require.NoError(t, err)

	updated, err := svc.UpdateLongCourse(ctx, s.ID, LongCourseInput{MatricNumber: "CSC/002", Profile: Profile{FirstName: "Adaeze", LastName: "Obi"}})
	require.NoError(t, err)
	assert.Equal(t, "Adaeze", updated.FirstName)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)

	require.NoError(t, svc.DeleteLongCourse(ctx, s.ID))
	_, err = svc.GetLongCourse(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
