package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	logsvc "github.com/trezcool/shule/services/logger"
)

// NewLogger returns a logger discarding everything; Rollbar stays disabled in test mode.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

// NewValidator returns a validator with every domain validator registered.
func NewValidator(logger core.Logger) (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	result.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateLongCourseStudent(t *testing.T, repo student.Repository, matric string, profile student.Profile) student.LongCourseStudent {
	t.Helper()
	now := time.Now().UTC()
	s, err := repo.CreateLongCourseStudent(context.Background(), student.LongCourseStudent{
		MatricNumber: matric,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateLongCourseStudent() failed: %v", err)
	}
	return s
}

func CreateShortCourseStudent(
	t *testing.T,
	repo student.Repository,
	studentID string,
	year int,
	quarter string,
	profile student.Profile,
) student.ShortCourseStudent {
	t.Helper()
	now := time.Now().UTC()
	s, err := repo.CreateShortCourseStudent(context.Background(), student.ShortCourseStudent{
		StudentID: studentID,
		Year:      year,
		Quarter:   quarter,
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateShortCourseStudent() failed: %v", err)
	}
	return s
}

// CreateResult stores one result row; CreatedAt defaults to now.
func CreateResult(t *testing.T, repo result.Repository, r result.Result) result.Result {
	t.Helper()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Grade == "" {
		r.Grade = result.GradeFor(r.Score)
	}
	rows, err := repo.CreateResults(context.Background(), r)
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}
	return rows[0]
}
