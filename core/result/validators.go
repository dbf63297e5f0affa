package result

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	scoreTag  = "score"
	scoreText = "score must be between 0 and 100"

	scoreDecimalsTag  = "score_decimals"
	scoreDecimalsText = "score can have at most 2 decimal places"

	gradeMatchTag  = "grade_score"
	gradeMatchText = "grade does not match the score"

	uniqueCoursesTag  = "unique_courses"
	uniqueCoursesText = "a course can only appear once per sheet"
)

// InitValidators registers the result validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(scoreTag, scoreValidation)
	core.RegisterCustomTranslation(validate, translator, scoreTag, scoreText)
	_ = validate.RegisterValidation(scoreDecimalsTag, scoreDecimalsValidation)
	core.RegisterCustomTranslation(validate, translator, scoreDecimalsTag, scoreDecimalsText)

	validate.RegisterStructValidation(courseScoreStructValidation, CourseScore{})
	core.RegisterCustomTranslation(validate, translator, gradeMatchTag, gradeMatchText)

	validate.RegisterStructValidation(sheetStructValidation, NewResultSheet{})
	core.RegisterCustomTranslation(validate, translator, uniqueCoursesTag, uniqueCoursesText)
}

func scoreValidation(fl validator.FieldLevel) bool {
	return ValidScore(fl.Field().Float())
}

func scoreDecimalsValidation(fl validator.FieldLevel) bool {
	return ValidScorePrecision(fl.Field().Float())
}

// courseScoreStructValidation checks that a valid grade agrees with the score.
func courseScoreStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(CourseScore)
	if c.Score == nil || !ValidScore(*c.Score) || c.Grade == "" {
		return
	}
	if c.Grade != GradeFor(*c.Score) {
		sl.ReportError(c.Grade, "grade", "Grade", gradeMatchTag, "")
	}
}

// sheetStructValidation rejects duplicate course codes.
func sheetStructValidation(sl validator.StructLevel) {
	sheet := sl.Current().Interface().(NewResultSheet)
	seen := make(map[string]bool, len(sheet.Courses))
	for _, c := range sheet.Courses {
		code := strings.ToUpper(c.CourseCode)
		if code == "" {
			continue
		}
		if seen[code] {
			sl.ReportError(sheet.Courses, "courses", "Courses", uniqueCoursesTag, "")
			return
		}
		seen[code] = true
	}
}
