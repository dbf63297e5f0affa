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
	"github.com/trezcool/shule/core/result"
)

const resultTable = "long_course_results"

var resultColumns = []string{
	"id", "student_id", "first_name", "last_name", "department", "course", "score", "grade",
	"academic_session", "semester", "created_at",
}

type resultRow struct {
	ID              string      `db:"id"`
	StudentID       null.String `db:"student_id"`
	FirstName       null.String `db:"first_name"`
	LastName        null.String `db:"last_name"`
	Department      null.String `db:"department"`
	Course          string      `db:"course"`
	Score           float64     `db:"score"`
	Grade           string      `db:"grade"`
	AcademicSession null.String `db:"academic_session"`
	Semester        null.String `db:"semester"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r resultRow) result() result.Result {
	return result.Result{
		ID:              r.ID,
		StudentID:       r.StudentID.String,
		FirstName:       r.FirstName.String,
		LastName:        r.LastName.String,
		Department:      r.Department.String,
		Course:          r.Course,
		Score:           r.Score,
		Grade:           r.Grade,
		AcademicSession: r.AcademicSession.String,
		Semester:        r.Semester.String,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

func toResults(rows []resultRow) []result.Result {
	results := make([]result.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.result())
	}
	return results
}

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *sqlx.DB) result.Repository {
	return &resultRepository{db: db}
}

// insertResultsBuilder inserts all rows with a single statement.
func insertResultsBuilder(rows []result.Result) sq.InsertBuilder {
	qb := psql.Insert(resultTable).Columns(resultColumns...)
	for _, r := range rows {
		qb = qb.Values(
			r.ID, optString(r.StudentID), optString(r.FirstName), optString(r.LastName), optString(r.Department),
			r.Course, r.Score, r.Grade, optString(r.AcademicSession), optString(r.Semester), r.CreatedAt.UTC(),
		)
	}
	return qb
}

// CreateResults inserts the rows in one transaction: all or none.
func (repo *resultRepository) CreateResults(ctx context.Context, rows ...result.Result) ([]result.Result, error) {
	if len(rows) == 0 {
		return []result.Result{}, nil
	}
	created := make([]result.Result, 0, len(rows))
	for _, r := range rows {
		r.ID = uuid.New().String()
		r.CreatedAt = r.CreatedAt.UTC()
		created = append(created, r)
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	if _, err = exec(ctx, tx, insertResultsBuilder(created)); err != nil {
		_ = tx.Rollback()
		return nil, errors.Wrap(err, "inserting results")
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing results")
	}
	return created, nil
}

func (repo *resultRepository) QueryResults(ctx context.Context, ordering []core.DBOrdering) ([]result.Result, error) {
	var rows []resultRow
	qb := orderBy(psql.Select(resultColumns...).From(resultTable), ordering)
	if err := selectAll(ctx, repo.db, &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	return toResults(rows), nil
}

func (repo *resultRepository) QueryStudentResults(ctx context.Context, studentID string) ([]result.Result, error) {
	var rows []resultRow
	qb := psql.Select(resultColumns...).From(resultTable).
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("created_at ASC", "course ASC")
	if err := selectAll(ctx, repo.db, &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying student results")
	}
	return toResults(rows), nil
}

func (repo *resultRepository) GetResult(ctx context.Context, id string) (result.Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return result.Result{}, result.ErrNotFound
	}
	var r resultRow
	qb := psql.Select(resultColumns...).From(resultTable).Where(sq.Eq{"id": id})
	if err := selectOne(ctx, repo.db, &r, qb); err != nil {
		return result.Result{}, trapNoRowsErr(err, result.ErrNotFound, "getting result")
	}
	return r.result(), nil
}

func (repo *resultRepository) DeleteResults(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := exec(ctx, repo.db, psql.Delete(resultTable).Where(sq.Eq{"id": ids})); err != nil {
		return errors.Wrap(err, "deleting results")
	}
	return nil
}
