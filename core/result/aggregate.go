package result

// Aggregate groups result rows by student ID, in first-seen order.
// Identity fields come from the first row of each student; later rows only
// add to the course count and the mean score.
// Rows with an empty student ID are grouped together.
func Aggregate(rows []Result) []StudentAggregate {
	aggs := make([]StudentAggregate, 0)
	index := make(map[string]int)
	totals := make([]float64, 0)

	for _, row := range rows {
		i, ok := index[row.StudentID]
		if !ok {
			i = len(aggs)
			index[row.StudentID] = i
			aggs = append(aggs, StudentAggregate{
				StudentID:       row.StudentID,
				FirstName:       row.FirstName,
				LastName:        row.LastName,
				Department:      row.Department,
				Course:          row.Course,
				AcademicSession: row.AcademicSession,
				Semester:        row.Semester,
				CreatedAt:       row.CreatedAt,
			})
			totals = append(totals, 0)
		}
		totals[i] += row.Score
		aggs[i].CoursesCount++
		aggs[i].Score = totals[i] / float64(aggs[i].CoursesCount)
	}
	return aggs
}
