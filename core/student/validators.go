package student

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	quarterTag  = "quarter"
	quarterText = "quarter must be one of First, Second, Third or Fourth"

	phoneTag   = "phone"
	phoneText  = "phone must be a valid phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,18}[0-9]$`)

	dateTag  = "datetime"
	dateText = "{0} must be a valid date (YYYY-MM-DD)"

	sexTag  = "sex"
	sexText = "sex must be one of: male, female"
)

// InitValidators registers the student validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(quarterTag, quarterValidation)
	core.RegisterCustomTranslation(validate, translator, quarterTag, quarterText)

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)

	core.RegisterCustomTranslation(validate, translator, dateTag, dateText, true)

	validate.RegisterStructValidation(sexStructValidation, LongCourseInput{}, ShortCourseInput{})
	core.RegisterCustomTranslation(validate, translator, sexTag, sexText)
}

func quarterValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, q := range Quarters {
		if val == q {
			return true
		}
	}
	return false
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// sexStructValidation checks the sex of the embedded Profile.
func sexStructValidation(sl validator.StructLevel) {
	var sex string
	switch in := sl.Current().Interface().(type) {
	case LongCourseInput:
		sex = in.Sex
	case ShortCourseInput:
		sex = in.Sex
	}
	if sex != "" && sex != "male" && sex != "female" {
		sl.ReportError(sex, "sex", "Sex", sexTag, "")
	}
}
