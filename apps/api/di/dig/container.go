package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	pdfsvc "github.com/trezcool/shule/services/pdf"
	"github.com/trezcool/shule/storage/database"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Store is the open storage backend.
type Store struct {
	Backend string
	DB      *sqlx.DB // nil with the memory backend
}

func (s Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

type repositories struct {
	dig.Out

	Store    Store
	Users    user.Repository
	Students student.Repository
	Results  result.Repository
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	MailSvc    core.EmailService
	Renderer   result.Renderer
	UserSvc    user.ServiceInterface
	StudentSvc student.ServiceInterface
	ResultSvc  result.ServiceInterface
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newRepositories opens the configured backend.
func newRepositories(conf *core.Config, loggerParam DBLoggerParam) repositories {
	switch conf.Backend {
	case core.BackendMemory:
		loggerParam.Logger.Warn("using the in-memory store: data is lost on restart")
		db := inmemdb.Open()
		return repositories{
			Store:    Store{Backend: conf.Backend},
			Users:    inmemdb.NewUserRepository(db),
			Students: inmemdb.NewStudentRepository(db),
			Results:  inmemdb.NewResultRepository(db),
		}

	case core.BackendPostgres:
		db, err := setUpDB(conf)
		if err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		return repositories{
			Store:    Store{Backend: conf.Backend, DB: db},
			Users:    sqlxrepos.NewUserRepository(db),
			Students: sqlxrepos.NewStudentRepository(db),
			Results:  sqlxrepos.NewResultRepository(db),
		}
	}

	loggerParam.Logger.Fatal(fmt.Sprintf("unknown storage backend %q", conf.Backend))
	return repositories{}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newRenderer(conf *core.Config) result.Renderer {
	return pdfsvc.NewRenderer(conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		MailSvc:    p.MailSvc,
		Renderer:   p.Renderer,
		UserSvc:    p.UserSvc,
		StudentSvc: p.StudentSvc,
		ResultSvc:  p.ResultSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newRenderer))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(result.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
