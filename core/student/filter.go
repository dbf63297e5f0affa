package student

import (
	"strconv"

	"github.com/trezcool/shule/core"
)

// LongCourseFilter is the view state of the long-course students list.
type LongCourseFilter struct {
	Search     string `query:"search" json:"search"`
	Department string `query:"department" json:"department"`
	Course     string `query:"course" json:"course"`
}

func (f *LongCourseFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Department = core.CleanString(f.Department)
	f.Course = core.CleanString(f.Course)
}

func (f LongCourseFilter) IsEmpty() bool {
	return f == LongCourseFilter{}
}

// Match does a case-insensitive match on every set field; Search matches
// one of first name, last name or matric number.
func (f LongCourseFilter) Match(s LongCourseStudent) bool {
	return core.MatchAny(f.Search, core.ContainsFold, s.FirstName, s.LastName, s.MatricNumber) &&
		core.MatchAll(
			core.FieldMatch{Field: s.Department, Want: f.Department, Mode: core.ContainsFold},
			core.FieldMatch{Field: s.Course, Want: f.Course, Mode: core.ContainsFold},
		)
}

// ShortCourseFilter is the view state of the short-course students list.
type ShortCourseFilter struct {
	Year       string `query:"year" json:"year"`
	Quarter    string `query:"quarter" json:"quarter"`
	Department string `query:"department" json:"department"`
	Course     string `query:"course" json:"course"`
}

func (f *ShortCourseFilter) Clean() {
	f.Year = core.CleanString(f.Year)
	f.Quarter = core.CleanString(f.Quarter)
	f.Department = core.CleanString(f.Department)
	f.Course = core.CleanString(f.Course)
}

func (f ShortCourseFilter) IsEmpty() bool {
	return f == ShortCourseFilter{}
}

// Match does a case-insensitive substring match on every set field.
func (f ShortCourseFilter) Match(s ShortCourseStudent) bool {
	return core.MatchAll(
		core.FieldMatch{Field: strconv.Itoa(s.Year), Want: f.Year, Mode: core.ContainsFold},
		core.FieldMatch{Field: s.Quarter, Want: f.Quarter, Mode: core.ContainsFold},
		core.FieldMatch{Field: s.Department, Want: f.Department, Mode: core.ContainsFold},
		core.FieldMatch{Field: s.Course, Want: f.Course, Mode: core.ContainsFold},
	)
}

func FilterLongCourse(students []LongCourseStudent, f LongCourseFilter) []LongCourseStudent {
	filtered := make([]LongCourseStudent, 0, len(students))
	for _, s := range students {
		if f.Match(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func FilterShortCourse(students []ShortCourseStudent, f ShortCourseFilter) []ShortCourseStudent {
	filtered := make([]ShortCourseStudent, 0, len(students))
	for _, s := range students {
		if f.Match(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
