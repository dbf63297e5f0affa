package result

import (
	"strconv"

	"github.com/trezcool/shule/core"
)

// Filter is the view state of the results list.
// StudentID, Department & Year apply to result rows, Search to the student aggregates.
type Filter struct {
	StudentID  string `query:"student_id" json:"student_id"`
	Department string `query:"department" json:"department"`
	Year       string `query:"year" json:"year"`
	Search     string `query:"search" json:"search"`
}

func (f *Filter) Clean() {
	f.StudentID = core.CleanString(f.StudentID)
	f.Department = core.CleanString(f.Department)
	f.Year = core.CleanString(f.Year)
	f.Search = core.CleanString(f.Search)
}

func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// MatchRow does a case-sensitive substring match on student ID & department
// and an exact match on the creation year.
func (f Filter) MatchRow(r Result) bool {
	var year string
	if !r.CreatedAt.IsZero() {
		year = strconv.Itoa(r.CreatedAt.Year())
	}
	return core.MatchAll(
		core.FieldMatch{Field: r.StudentID, Want: f.StudentID, Mode: core.Contains},
		core.FieldMatch{Field: r.Department, Want: f.Department, Mode: core.Contains},
		core.FieldMatch{Field: year, Want: f.Year, Mode: core.Equal},
	)
}

// MatchAggregate does a case-insensitive match of Search on names & student ID.
func (f Filter) MatchAggregate(agg StudentAggregate) bool {
	return core.MatchAny(f.Search, core.ContainsFold, agg.FirstName, agg.LastName, agg.StudentID)
}

// Summarize filters the rows, aggregates them, then applies the search.
func Summarize(rows []Result, f Filter) []StudentAggregate {
	filtered := make([]Result, 0, len(rows))
	for _, r := range rows {
		if f.MatchRow(r) {
			filtered = append(filtered, r)
		}
	}

	aggs := Aggregate(filtered)
	if f.Search == "" {
		return aggs
	}
	found := make([]StudentAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if f.MatchAggregate(agg) {
			found = append(found, agg)
		}
	}
	return found
}

// Describe lists the active filters as "label: value" lines.
func (f Filter) Describe() []string {
	var lines []string
	add := func(label, val string) {
		if val != "" {
			lines = append(lines, label+": "+val)
		}
	}
	add("Student ID", f.StudentID)
	add("Department", f.Department)
	add("Year", f.Year)
	add("Search", f.Search)
	return lines
}
