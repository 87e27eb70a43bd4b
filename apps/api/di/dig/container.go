package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/semsync/semsync/apps/api/echo"
	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
	"github.com/semsync/semsync/core/study"
	"github.com/semsync/semsync/core/user"
	logsvc "github.com/semsync/semsync/services/logger"
	"github.com/semsync/semsync/storage/database"
	inmemdb "github.com/semsync/semsync/storage/database/inmem"
	sqlxrepos "github.com/semsync/semsync/storage/database/sqlx"
	mongorepos "github.com/semsync/semsync/storage/document/mongo"
)

const storeSetupTimeout = 30 * time.Second

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type ServerParam struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	CalendarSvc *calendar.Service
	StudySvc    *study.Service
	UserSvc     *user.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newStore opens the configured record store and returns its repositories.
func newStore(conf *core.Config, loggerParam DBLoggerParam) (
	core.Store,
	calendar.Repository,
	study.Repository,
	user.Repository,
) {
	ctx, cancel := context.WithTimeout(context.Background(), storeSetupTimeout)
	defer cancel()

	logger := loggerParam.Logger
	fail := func(err error) {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}

	switch conf.Database.Engine {
	case core.EnginePostgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			fail(err)
		}
		db, err := database.Open(conf)
		if err != nil {
			fail(err)
		}
		if err = database.Migrate(db.DB); err != nil {
			fail(err)
		}
		return database.NewStore(db),
			sqlxrepos.NewCalendarRepository(db),
			sqlxrepos.NewStudyRepository(db),
			sqlxrepos.NewUserRepository(db)

	case core.EngineMongo:
		store, err := mongorepos.Open(ctx, conf.Database.URI, conf.Database.Name)
		if err != nil {
			fail(err)
		}
		if err = store.EnsureIndexes(ctx); err != nil {
			fail(err)
		}
		return store,
			mongorepos.NewCalendarRepository(store),
			mongorepos.NewStudyRepository(store),
			mongorepos.NewUserRepository(store)

	case core.EngineInMem:
		logger.Warn("using the in-memory store: records are lost on shutdown")
		db := inmemdb.Open()
		return db,
			inmemdb.NewCalendarRepository(db),
			inmemdb.NewStudyRepository(db),
			inmemdb.NewUserRepository(db)
	}

	fail(errors.Errorf("unknown database engine %q", conf.Database.Engine))
	return nil, nil, nil, nil
}

func newServer(p ServerParam) *echoapi.Server {
	return echoapi.NewServer(p.Conf, &echoapi.Deps{
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		CalendarSvc: p.CalendarSvc,
		StudySvc:    p.StudySvc,
		UserSvc:     p.UserSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(calendar.NewService))
	must(c.Provide(study.NewService))
	must(c.Provide(user.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
