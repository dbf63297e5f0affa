package result

import (
	"fmt"
	"io"
	"time"
)

// Alignments of a report column.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

type Column struct {
	Header string
	Width  float64 // relative to the other columns
	Align  string
}

// Document is a printable results report.
type Document struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Filters     []string
	Columns     []Column
	Rows        [][]string
	Summary     []string
}

// Filename is the download name of the rendered document.
func (doc Document) Filename(ext string) string {
	return fmt.Sprintf("%s_%s.%s", slug(doc.Title), doc.GeneratedAt.Format("20060102"), ext)
}

// Renderer renders a Document to some printable format.
type Renderer interface {
	Render(w io.Writer, doc Document) error
	ContentType() string
	Extension() string
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// NewSummaryDocument builds the report of the aggregated results list.
func NewSummaryDocument(aggs []StudentAggregate, filter Filter, now time.Time) Document {
	doc := Document{
		Title:       "Students Results",
		GeneratedAt: now,
		Filters:     filter.Describe(),
		Columns: []Column{
			{Header: "Student", Width: 3, Align: AlignLeft},
			{Header: "Student ID", Width: 2, Align: AlignLeft},
			{Header: "Department", Width: 3, Align: AlignLeft},
			{Header: "Courses", Width: 1, Align: AlignCenter},
			{Header: "Avg. Score", Width: 1.5, Align: AlignRight},
			{Header: "Date", Width: 2, Align: AlignCenter},
		},
		Rows: make([][]string, 0, len(aggs)),
	}

	var total float64
	for _, agg := range aggs {
		total += agg.Score
		doc.Rows = append(doc.Rows, []string{
			agg.FullName(),
			agg.StudentID,
			agg.Department,
			fmt.Sprint(agg.CoursesCount),
			formatScore(agg.Score),
			agg.CreatedAt.Format("2006-01-02"),
		})
	}

	doc.Summary = []string{fmt.Sprintf("Students: %d", len(aggs))}
	if len(aggs) > 0 {
		doc.Summary = append(doc.Summary, "Overall average: "+formatScore(total/float64(len(aggs))))
	}
	return doc
}

// NewTranscriptDocument builds the report of one student's results.
// rows must all belong to the same student.
func NewTranscriptDocument(rows []Result, now time.Time) Document {
	agg := Aggregate(rows)
	doc := Document{
		Title:       "Student Transcript",
		GeneratedAt: now,
		Columns: []Column{
			{Header: "Course", Width: 3, Align: AlignLeft},
			{Header: "Session", Width: 2, Align: AlignCenter},
			{Header: "Semester", Width: 2, Align: AlignCenter},
			{Header: "Score", Width: 1.5, Align: AlignRight},
			{Header: "Grade", Width: 1, Align: AlignCenter},
		},
		Rows: make([][]string, 0, len(rows)),
	}
	if len(agg) > 0 {
		first := agg[0]
		doc.Subtitle = fmt.Sprintf("%s (%s) - %s", first.FullName(), first.StudentID, first.Department)
		doc.Summary = []string{
			fmt.Sprintf("Courses: %d", first.CoursesCount),
			"Average score: " + formatScore(first.Score),
			"Overall grade: " + GradeFor(first.Score),
		}
	}

	for _, r := range rows {
		doc.Rows = append(doc.Rows, []string{r.Course, r.AcademicSession, r.Semester, formatScore(r.Score), r.Grade})
	}
	return doc
}

func slug(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
		case r >= 'A' && r <= 'Z':
			b = append(b, r+'a'-'A')
		default:
			if len(b) > 0 && b[len(b)-1] != '_' {
				b = append(b, '_')
			}
		}
	}
	return string(b)
}
