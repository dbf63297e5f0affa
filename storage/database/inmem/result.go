package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
)

type resultRepository struct {
	db *resultTable
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db.result}
}

func (repo *resultRepository) CreateResults(_ context.Context, rows ...result.Result) ([]result.Result, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]result.Result, 0, len(rows))
	for _, r := range rows {
		r.ID = uuid.New().String()
		created = append(created, r)
	}
	repo.db.rows = append(repo.db.rows, created...)
	return created, nil
}

func (repo *resultRepository) QueryResults(_ context.Context, ordering []core.DBOrdering) ([]result.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := append(make([]result.Result, 0, len(repo.db.rows)), repo.db.rows...)
	orderBy(rows, ordering, func(field string, i, j int) int {
		a, b := rows[i], rows[j]
		switch field {
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "student_id":
			return compareStrings(a.StudentID, b.StudentID)
		case "course":
			return compareStrings(a.Course, b.Course)
		case "score":
			return compareFloats(a.Score, b.Score)
		}
		return 0
	})
	return rows, nil
}

func (repo *resultRepository) QueryStudentResults(_ context.Context, studentID string) ([]result.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]result.Result, 0)
	for _, r := range repo.db.rows {
		if r.StudentID == studentID {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func (repo *resultRepository) GetResult(_ context.Context, id string) (result.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return result.Result{}, result.ErrNotFound
}

func (repo *resultRepository) DeleteResults(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0]
	for _, r := range repo.db.rows {
		if !contains(ids, r.ID) {
			kept = append(kept, r)
		}
	}
	repo.db.rows = kept
	return nil
}
