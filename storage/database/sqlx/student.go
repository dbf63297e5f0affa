package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

const (
	longStudentTable  = "long_course_students"
	shortStudentTable = "short_course_students"
)

var (
	profileColumns      = []string{"first_name", "last_name", "sex", "dob", "email", "phone", "address", "department", "course", "photo_url"}
	longStudentColumns  = append([]string{"id", "matric_number"}, append(profileColumns, "created_at", "updated_at")...)
	shortStudentColumns = append([]string{"id", "student_id", "year", "quarter"}, append(profileColumns, "created_at", "updated_at")...)
)

type profileRow struct {
	FirstName  string      `db:"first_name"`
	LastName   string      `db:"last_name"`
	Sex        null.String `db:"sex"`
	DOB        null.String `db:"dob"`
	Email      null.String `db:"email"`
	Phone      null.String `db:"phone"`
	Address    null.String `db:"address"`
	Department null.String `db:"department"`
	Course     null.String `db:"course"`
	PhotoURL   null.String `db:"photo_url"`
}

func optString(s string) null.String {
	return null.NewString(s, s != "")
}

func toProfileRow(p student.Profile) profileRow {
	return profileRow{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Sex:        optString(p.Sex),
		DOB:        optString(p.DOB),
		Email:      optString(p.Email),
		Phone:      optString(p.Phone),
		Address:    optString(p.Address),
		Department: optString(p.Department),
		Course:     optString(p.Course),
		PhotoURL:   optString(p.PhotoURL),
	}
}

func (r profileRow) values() []interface{} {
	return []interface{}{r.FirstName, r.LastName, r.Sex, r.DOB, r.Email, r.Phone, r.Address, r.Department, r.Course, r.PhotoURL}
}

func (r profileRow) setMap() map[string]interface{} {
	m := make(map[string]interface{}, len(profileColumns))
	for i, v := range r.values() {
		m[profileColumns[i]] = v
	}
	return m
}

func (r profileRow) profile() student.Profile {
	return student.Profile{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Sex:        r.Sex.String,
		DOB:        r.DOB.String,
		Email:      r.Email.String,
		Phone:      r.Phone.String,
		Address:    r.Address.String,
		Department: r.Department.String,
		Course:     r.Course.String,
		PhotoURL:   r.PhotoURL.String,
	}
}

type longStudentRow struct {
	ID           string `db:"id"`
	MatricNumber string `db:"matric_number"`
	profileRow
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r longStudentRow) student() student.LongCourseStudent {
	return student.LongCourseStudent{
		ID:           r.ID,
		MatricNumber: r.MatricNumber,
		Profile:      r.profile(),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type shortStudentRow struct {
	ID        string `db:"id"`
	StudentID string `db:"student_id"`
	Year      int    `db:"year"`
	Quarter   string `db:"quarter"`
	profileRow
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r shortStudentRow) student() student.ShortCourseStudent {
	return student.ShortCourseStudent{
		ID:        r.ID,
		StudentID: r.StudentID,
		Year:      r.Year,
		Quarter:   r.Quarter,
		Profile:   r.profile(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

// getStudentBuilder selects a student by ID or by number (numberCol).
func getStudentBuilder(table, numberCol string, cols []string, filter student.GetFilter) sq.SelectBuilder {
	qb := psql.Select(cols...).From(table)
	if filter.ID != "" {
		return qb.Where(sq.Eq{"id": filter.ID})
	}
	return qb.Where(sq.Eq{numberCol: filter.Number})
}

func validGetFilter(filter student.GetFilter) bool {
	if filter.ID != "" {
		_, err := uuid.Parse(filter.ID)
		return err == nil
	}
	return filter.Number != ""
}

// Long-course students

func (repo *studentRepository) CreateLongCourseStudent(ctx context.Context, s student.LongCourseStudent) (student.LongCourseStudent, error) {
	s.ID = uuid.New().String()
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()

	values := append([]interface{}{s.ID, s.MatricNumber}, toProfileRow(s.Profile).values()...)
	values = append(values, s.CreatedAt, s.UpdatedAt)
	qb := psql.Insert(longStudentTable).Columns(longStudentColumns...).Values(values...)
	if _, err := exec(ctx, repo.db, qb); err != nil {
		return student.LongCourseStudent{}, errors.Wrap(err, "inserting long-course student")
	}
	return s, nil
}

func (repo *studentRepository) QueryLongCourseStudents(ctx context.Context, ordering []core.DBOrdering) ([]student.LongCourseStudent, error) {
	var rows []longStudentRow
	qb := orderBy(psql.Select(longStudentColumns...).From(longStudentTable), ordering)
	if err := selectAll(ctx, repo.db, &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying long-course students")
	}
	students := make([]student.LongCourseStudent, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo *studentRepository) GetLongCourseStudent(ctx context.Context, filter student.GetFilter) (student.LongCourseStudent, error) {
	if !validGetFilter(filter) {
		return student.LongCourseStudent{}, student.ErrNotFound
	}
	var r longStudentRow
	qb := getStudentBuilder(longStudentTable, "matric_number", longStudentColumns, filter)
	if err := selectOne(ctx, repo.db, &r, qb); err != nil {
		return student.LongCourseStudent{}, trapNoRowsErr(err, student.ErrNotFound, "getting long-course student")
	}
	return r.student(), nil
}

func (repo *studentRepository) UpdateLongCourseStudent(ctx context.Context, s student.LongCourseStudent) (student.LongCourseStudent, error) {
	if !validGetFilter(student.GetFilter{ID: s.ID}) {
		return student.LongCourseStudent{}, student.ErrNotFound
	}
	qb := psql.Update(longStudentTable).
		Set("matric_number", s.MatricNumber).
		SetMap(toProfileRow(s.Profile).setMap()).
		Set("updated_at", s.UpdatedAt.UTC()).
		Where(sq.Eq{"id": s.ID})

	res, err := exec(ctx, repo.db, qb)
	if err != nil {
		return student.LongCourseStudent{}, errors.Wrap(err, "updating long-course student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.LongCourseStudent{}, err
	}
	return repo.GetLongCourseStudent(ctx, student.GetFilter{ID: s.ID})
}

func (repo *studentRepository) DeleteLongCourseStudents(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := exec(ctx, repo.db, psql.Delete(longStudentTable).Where(sq.Eq{"id": ids})); err != nil {
		return errors.Wrap(err, "deleting long-course students")
	}
	return nil
}

// Short-course students

func (repo *studentRepository) CreateShortCourseStudent(ctx context.Context, s student.ShortCourseStudent) (student.ShortCourseStudent, error) {
	s.ID = uuid.New().String()
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()

	values := append([]interface{}{s.ID, s.StudentID, s.Year, s.Quarter}, toProfileRow(s.Profile).values()...)
	values = append(values, s.CreatedAt, s.UpdatedAt)
	qb := psql.Insert(shortStudentTable).Columns(shortStudentColumns...).Values(values...)
	if _, err := exec(ctx, repo.db, qb); err != nil {
		return student.ShortCourseStudent{}, errors.Wrap(err, "inserting short-course student")
	}
	return s, nil
}

func (repo *studentRepository) QueryShortCourseStudents(ctx context.Context, ordering []core.DBOrdering) ([]student.ShortCourseStudent, error) {
	var rows []shortStudentRow
	qb := orderBy(psql.Select(shortStudentColumns...).From(shortStudentTable), ordering)
	if err := selectAll(ctx, repo.db, &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying short-course students")
	}
	students := make([]student.ShortCourseStudent, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo *studentRepository) GetShortCourseStudent(ctx context.Context, filter student.GetFilter) (student.ShortCourseStudent, error) {
	if !validGetFilter(filter) {
		return student.ShortCourseStudent{}, student.ErrNotFound
	}
	var r shortStudentRow
	qb := getStudentBuilder(shortStudentTable, "student_id", shortStudentColumns, filter)
	if err := selectOne(ctx, repo.db, &r, qb); err != nil {
		return student.ShortCourseStudent{}, trapNoRowsErr(err, student.ErrNotFound, "getting short-course student")
	}
	return r.student(), nil
}

func (repo *studentRepository) UpdateShortCourseStudent(ctx context.Context, s student.ShortCourseStudent) (student.ShortCourseStudent, error) {
	if !validGetFilter(student.GetFilter{ID: s.ID}) {
		return student.ShortCourseStudent{}, student.ErrNotFound
	}
	qb := psql.Update(shortStudentTable).
		Set("student_id", s.StudentID).
		Set("year", s.Year).
		Set("quarter", s.Quarter).
		SetMap(toProfileRow(s.Profile).setMap()).
		Set("updated_at", s.UpdatedAt.UTC()).
		Where(sq.Eq{"id": s.ID})

	res, err := exec(ctx, repo.db, qb)
	if err != nil {
		return student.ShortCourseStudent{}, errors.Wrap(err, "updating short-course student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.ShortCourseStudent{}, err
	}
	return repo.GetShortCourseStudent(ctx, student.GetFilter{ID: s.ID})
}

func (repo *studentRepository) DeleteShortCourseStudents(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := exec(ctx, repo.db, psql.Delete(shortStudentTable).Where(sq.Eq{"id": ids})); err != nil {
		return errors.Wrap(err, "deleting short-course students")
	}
	return nil
}
