package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	long  *longStudentTable
	short *shortStudentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{long: db.longStudent, short: db.shortStudent}
}

func compareProfiles(field string, a, b student.Profile) int {
	switch field {
	case "first_name":
		return compareStrings(a.FirstName, b.FirstName)
	case "last_name":
		return compareStrings(a.LastName, b.LastName)
	case "department":
		return compareStrings(a.Department, b.Department)
	case "course":
		return compareStrings(a.Course, b.Course)
	}
	return 0
}

// Long-course students

func (repo *studentRepository) CreateLongCourseStudent(_ context.Context, s student.LongCourseStudent) (student.LongCourseStudent, error) {
	repo.long.mutex.Lock()
	defer repo.long.mutex.Unlock()

	s.ID = uuid.New().String()
	repo.long.rows = append(repo.long.rows, s)
	return s, nil
}

func (repo *studentRepository) QueryLongCourseStudents(_ context.Context, ordering []core.DBOrdering) ([]student.LongCourseStudent, error) {
	repo.long.mutex.RLock()
	defer repo.long.mutex.RUnlock()

	students := append(make([]student.LongCourseStudent, 0, len(repo.long.rows)), repo.long.rows...)
	orderBy(students, ordering, func(field string, i, j int) int {
		a, b := students[i], students[j]
		switch field {
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "updated_at":
			return compareTimes(a.UpdatedAt, b.UpdatedAt)
		}
		return compareProfiles(field, a.Profile, b.Profile)
	})
	return students, nil
}

func (repo *studentRepository) GetLongCourseStudent(_ context.Context, filter student.GetFilter) (student.LongCourseStudent, error) {
	repo.long.mutex.RLock()
	defer repo.long.mutex.RUnlock()

	for _, s := range repo.long.rows {
		if (filter.ID != "" && s.ID == filter.ID) || (filter.Number != "" && s.MatricNumber == filter.Number) {
			return s, nil
		}
	}
	return student.LongCourseStudent{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateLongCourseStudent(_ context.Context, s student.LongCourseStudent) (student.LongCourseStudent, error) {
	repo.long.mutex.Lock()
	defer repo.long.mutex.Unlock()

	for i, orig := range repo.long.rows {
		if orig.ID == s.ID {
			s.CreatedAt = orig.CreatedAt
			repo.long.rows[i] = s
			return s, nil
		}
	}
	return student.LongCourseStudent{}, student.ErrNotFound
}

func (repo *studentRepository) DeleteLongCourseStudents(_ context.Context, ids ...string) error {
	repo.long.mutex.Lock()
	defer repo.long.mutex.Unlock()

	kept := repo.long.rows[:0]
	for _, s := range repo.long.rows {
		if !contains(ids, s.ID) {
			kept = append(kept, s)
		}
	}
	repo.long.rows = kept
	return nil
}

// Short-course students

func (repo *studentRepository) CreateShortCourseStudent(_ context.Context, s student.ShortCourseStudent) (student.ShortCourseStudent, error) {
	repo.short.mutex.Lock()
	defer repo.short.mutex.Unlock()

	s.ID = uuid.New().String()
	repo.short.rows = append(repo.short.rows, s)
	return s, nil
}

func (repo *studentRepository) QueryShortCourseStudents(_ context.Context, ordering []core.DBOrdering) ([]student.ShortCourseStudent, error) {
	repo.short.mutex.RLock()
	defer repo.short.mutex.RUnlock()

	students := append(make([]student.ShortCourseStudent, 0, len(repo.short.rows)), repo.short.rows...)
	orderBy(students, ordering, func(field string, i, j int) int {
		a, b := students[i], students[j]
		switch field {
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "updated_at":
			return compareTimes(a.UpdatedAt, b.UpdatedAt)
		}
		return compareProfiles(field, a.Profile, b.Profile)
	})
	return students, nil
}

func (repo *studentRepository) GetShortCourseStudent(_ context.Context, filter student.GetFilter) (student.ShortCourseStudent, error) {
	repo.short.mutex.RLock()
	defer repo.short.mutex.RUnlock()

	for _, s := range repo.short.rows {
		if (filter.ID != "" && s.ID == filter.ID) || (filter.Number != "" && s.StudentID == filter.Number) {
			return s, nil
		}
	}
	return student.ShortCourseStudent{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateShortCourseStudent(_ context.Context, s student.ShortCourseStudent) (student.ShortCourseStudent, error) {
	repo.short.mutex.Lock()
	defer repo.short.mutex.Unlock()

	for i, orig := range repo.short.rows {
		if orig.ID == s.ID {
			s.CreatedAt = orig.CreatedAt
			repo.short.rows[i] = s
			return s, nil
		}
	}
	return student.ShortCourseStudent{}, student.ErrNotFound
}

func (repo *studentRepository) DeleteShortCourseStudents(_ context.Context, ids ...string) error {
	repo.short.mutex.Lock()
	defer repo.short.mutex.Unlock()

	kept := repo.short.rows[:0]
	for _, s := range repo.short.rows {
		if !contains(ids, s.ID) {
			kept = append(kept, s)
		}
	}
	repo.short.rows = kept
	return nil
}
