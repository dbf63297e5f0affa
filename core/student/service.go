package student

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrNumberExists = errors.New("a student with this number already exists")

	fetchFailedMsg = "students could not be fetched"

	orderingFields = []string{"created_at", "updated_at", "first_name", "last_name", "department", "course"}
)

type (
	Repository interface {
		CreateLongCourseStudent(ctx context.Context, s LongCourseStudent) (LongCourseStudent, error)
		QueryLongCourseStudents(ctx context.Context, ordering []core.DBOrdering) ([]LongCourseStudent, error)
		GetLongCourseStudent(ctx context.Context, filter GetFilter) (LongCourseStudent, error)
		UpdateLongCourseStudent(ctx context.Context, s LongCourseStudent) (LongCourseStudent, error)
		DeleteLongCourseStudents(ctx context.Context, ids ...string) error

		CreateShortCourseStudent(ctx context.Context, s ShortCourseStudent) (ShortCourseStudent, error)
		QueryShortCourseStudents(ctx context.Context, ordering []core.DBOrdering) ([]ShortCourseStudent, error)
		GetShortCourseStudent(ctx context.Context, filter GetFilter) (ShortCourseStudent, error)
		UpdateShortCourseStudent(ctx context.Context, s ShortCourseStudent) (ShortCourseStudent, error)
		DeleteShortCourseStudents(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		// CheckStudentNumber checks that no student of any programme, other than the excluded one, owns number.
		// field names the input field reported on failure.
		CheckStudentNumber(ctx context.Context, field, number string, exclID ...string) error

		CreateLongCourse(ctx context.Context, in LongCourseInput) (LongCourseStudent, error)
		ListLongCourse(ctx context.Context, filter LongCourseFilter, ordering []core.DBOrdering) (LongCourseListing, error)
		GetLongCourse(ctx context.Context, id string) (LongCourseStudent, error)
		UpdateLongCourse(ctx context.Context, id string, in LongCourseInput) (LongCourseStudent, error)
		DeleteLongCourse(ctx context.Context, ids ...string) error

		CreateShortCourse(ctx context.Context, in ShortCourseInput) (ShortCourseStudent, error)
		ListShortCourse(ctx context.Context, filter ShortCourseFilter, ordering []core.DBOrdering) (ShortCourseListing, error)
		GetShortCourse(ctx context.Context, id string) (ShortCourseStudent, error)
		UpdateShortCourse(ctx context.Context, id string, in ShortCourseInput) (ShortCourseStudent, error)
		DeleteShortCourse(ctx context.Context, ids ...string) error

		// Lookup finds a student of any programme by matric number or student ID.
		Lookup(ctx context.Context, number string) (Lookup, error)
	}

	service struct {
		repo    Repository
		timeout time.Duration
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, conf *core.Config) ServiceInterface {
	return &service{repo: repo, timeout: conf.Database.QueryTimeout}
}

func (svc *service) CheckStudentNumber(ctx context.Context, field, number string, exclID ...string) error {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	var excluded string
	if len(exclID) > 0 {
		excluded = exclID[0]
	}
	exists := func(id string, err error) (bool, error) {
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return id != excluded, nil
	}

	lcs, err := svc.repo.GetLongCourseStudent(ctx, GetFilter{Number: number})
	found, err := exists(lcs.ID, err)
	if err != nil {
		return pkgerrors.Wrap(err, "checking long-course student number")
	}
	if !found {
		scs, scErr := svc.repo.GetShortCourseStudent(ctx, GetFilter{Number: number})
		if found, err = exists(scs.ID, scErr); err != nil {
			return pkgerrors.Wrap(err, "checking short-course student number")
		}
	}
	if found {
		return core.NewValidationError(ErrNumberExists, core.FieldError{Field: field, Error: ErrNumberExists.Error()})
	}
	return nil
}

// Long-course students

func (svc *service) CreateLongCourse(ctx context.Context, in LongCourseInput) (LongCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	now := time.Now().UTC()
	return svc.repo.CreateLongCourseStudent(ctx, LongCourseStudent{
		MatricNumber: in.MatricNumber,
		Profile:      in.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *service) ListLongCourse(ctx context.Context, filter LongCourseFilter, ordering []core.DBOrdering) (LongCourseListing, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	students, err := svc.repo.QueryLongCourseStudents(ctx, core.AllowedOrderings(ordering, orderingFields...))
	if err != nil {
		return LongCourseListing{ListingMeta: core.FailedListingMeta(fetchFailedMsg), Items: []LongCourseStudent{}},
			pkgerrors.Wrap(err, "querying long-course students")
	}
	items := FilterLongCourse(students, filter)
	return LongCourseListing{ListingMeta: core.NewListingMeta(len(items), len(students)), Items: items}, nil
}

func (svc *service) GetLongCourse(ctx context.Context, id string) (LongCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()
	return svc.repo.GetLongCourseStudent(ctx, GetFilter{ID: id})
}

func (svc *service) UpdateLongCourse(ctx context.Context, id string, in LongCourseInput) (LongCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	return svc.repo.UpdateLongCourseStudent(ctx, LongCourseStudent{
		ID:           id,
		MatricNumber: in.MatricNumber,
		Profile:      in.Profile,
		UpdatedAt:    time.Now().UTC(),
	})
}

func (svc *service) DeleteLongCourse(ctx context.Context, ids ...string) error {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()
	return svc.repo.DeleteLongCourseStudents(ctx, ids...)
}

// Short-course students

func (svc *service) CreateShortCourse(ctx context.Context, in ShortCourseInput) (ShortCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	now := time.Now().UTC()
	return svc.repo.CreateShortCourseStudent(ctx, ShortCourseStudent{
		StudentID: in.StudentID,
		Year:      in.Year,
		Quarter:   in.Quarter,
		Profile:   in.Profile,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) ListShortCourse(ctx context.Context, filter ShortCourseFilter, ordering []core.DBOrdering) (ShortCourseListing, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	students, err := svc.repo.QueryShortCourseStudents(ctx, core.AllowedOrderings(ordering, orderingFields...))
	if err != nil {
		return ShortCourseListing{ListingMeta: core.FailedListingMeta(fetchFailedMsg), Items: []ShortCourseStudent{}},
			pkgerrors.Wrap(err, "querying short-course students")
	}
	items := FilterShortCourse(students, filter)
	return ShortCourseListing{ListingMeta: core.NewListingMeta(len(items), len(students)), Items: items}, nil
}

func (svc *service) GetShortCourse(ctx context.Context, id string) (ShortCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()
	return svc.repo.GetShortCourseStudent(ctx, GetFilter{ID: id})
}

func (svc *service) UpdateShortCourse(ctx context.Context, id string, in ShortCourseInput) (ShortCourseStudent, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	return svc.repo.UpdateShortCourseStudent(ctx, ShortCourseStudent{
		ID:        id,
		StudentID: in.StudentID,
		Year:      in.Year,
		Quarter:   in.Quarter,
		Profile:   in.Profile,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *service) DeleteShortCourse(ctx context.Context, ids ...string) error {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()
	return svc.repo.DeleteShortCourseStudents(ctx, ids...)
}

func (svc *service) Lookup(ctx context.Context, number string) (Lookup, error) {
	ctx, cancel := core.QueryContext(ctx, svc.timeout)
	defer cancel()

	number = core.CleanString(number)
	if number == "" {
		return Lookup{}, ErrNotFound
	}

	lcs, err := svc.repo.GetLongCourseStudent(ctx, GetFilter{Number: number})
	if err == nil {
		return Lookup{
			ID:         lcs.ID,
			Programme:  ProgrammeLong,
			StudentID:  lcs.MatricNumber,
			FirstName:  lcs.FirstName,
			LastName:   lcs.LastName,
			Email:      lcs.Email,
			Department: lcs.Department,
			Course:     lcs.Course,
		}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Lookup{}, pkgerrors.Wrap(err, "finding long-course student")
	}

	scs, err := svc.repo.GetShortCourseStudent(ctx, GetFilter{Number: number})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Lookup{}, ErrNotFound
		}
		return Lookup{}, pkgerrors.Wrap(err, "finding short-course student")
	}
	return Lookup{
		ID:         scs.ID,
		Programme:  ProgrammeShort,
		StudentID:  scs.StudentID,
		FirstName:  scs.FirstName,
		LastName:   scs.LastName,
		Email:      scs.Email,
		Department: scs.Department,
		Course:     scs.Course,
	}, nil
}
