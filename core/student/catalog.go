package student

import "strings"

// Option is a select option.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var (
	departmentOptions = map[string][]Option{
		ProgrammeLong: {
			{Label: "Computer Science", Value: "Computer Science"},
			{Label: "Business Administration", Value: "Business Administration"},
			{Label: "Mass Communication", Value: "Mass Communication"},
			{Label: "Accounting", Value: "Accounting"},
		},
		ProgrammeShort: {
			{Label: "ICT", Value: "ICT"},
			{Label: "Fashion Design", Value: "Fashion Design"},
			{Label: "Catering", Value: "Catering"},
		},
	}

	courseOptions = map[string][]Option{
		"Computer Science": {
			{Label: "Software Engineering", Value: "Software Engineering"},
			{Label: "Networking", Value: "Networking"},
		},
		"Business Administration": {
			{Label: "Management", Value: "Management"},
			{Label: "Marketing", Value: "Marketing"},
		},
		"Mass Communication": {
			{Label: "Journalism", Value: "Journalism"},
			{Label: "Public Relations", Value: "Public Relations"},
		},
		"Accounting": {
			{Label: "Financial Accounting", Value: "Financial Accounting"},
		},
		"ICT": {
			{Label: "Computer Appreciation", Value: "Computer Appreciation"},
			{Label: "Web Design", Value: "Web Design"},
			{Label: "Graphic Design", Value: "Graphic Design"},
		},
		"Fashion Design": {
			{Label: "Pattern Drafting", Value: "Pattern Drafting"},
			{Label: "Sewing", Value: "Sewing"},
		},
		"Catering": {
			{Label: "Pastry", Value: "Pastry"},
			{Label: "Continental Dishes", Value: "Continental Dishes"},
		},
	}
)

// Departments returns the department options of a programme; all departments when
// programme is empty.
func Departments(programme string) []Option {
	programme = strings.ToLower(strings.TrimSpace(programme))
	if programme != "" {
		opts := departmentOptions[programme]
		if opts == nil {
			return []Option{}
		}
		return opts
	}
	all := make([]Option, 0, len(departmentOptions[ProgrammeLong])+len(departmentOptions[ProgrammeShort]))
	all = append(all, departmentOptions[ProgrammeLong]...)
	all = append(all, departmentOptions[ProgrammeShort]...)
	return all
}

// Courses returns the course options of a department.
func Courses(department string) []Option {
	opts, ok := courseOptions[strings.TrimSpace(department)]
	if !ok {
		return []Option{}
	}
	return opts
}

func QuarterOptions() []Option {
	opts := make([]Option, 0, len(Quarters))
	for _, q := range Quarters {
		opts = append(opts, Option{Label: q, Value: q})
	}
	return opts
}
