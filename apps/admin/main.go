package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/user"
	logsvc "github.com/semsync/semsync/services/logger"
	"github.com/semsync/semsync/storage/database"
	inmemdb "github.com/semsync/semsync/storage/database/inmem"
	sqlxrepos "github.com/semsync/semsync/storage/database/sqlx"
	mongorepos "github.com/semsync/semsync/storage/document/mongo"
)

const setupTimeout = 30 * time.Second

var logger core.Logger

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rlogger := logsvc.NewRollbarLogger(stdLogger, conf)
	rlogger.Enable(!conf.Debug)
	logger = rlogger

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	// set up store
	store, db, usrRepo, err := openStore(ctx, conf)
	errAndDie(err)
	defer func() { _ = store.Close(context.Background()) }()
	errAndDie(store.Ping(ctx))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// start CLI
	cli := commandLine{
		db:         db,
		usrSvc:     user.NewService(usrRepo),
		validate:   validate,
		translator: translator,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		_ = store.Close(context.Background())
		os.Exit(1)
	}
}

// openStore returns the configured store and user repository.
// db is only set for postgres, the only engine with migrations.
func openStore(ctx context.Context, conf *core.Config) (core.Store, *sql.DB, user.Repository, error) {
	switch conf.Database.Engine {
	case core.EnginePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, nil, err
		}
		return database.NewStore(db), db.DB, sqlxrepos.NewUserRepository(db), nil
	case core.EngineMongo:
		store, err := mongorepos.Open(ctx, conf.Database.URI, conf.Database.Name)
		if err != nil {
			return nil, nil, nil, err
		}
		if err = store.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, err
		}
		return store, nil, mongorepos.NewUserRepository(store), nil
	case core.EngineInMem:
		db := inmemdb.Open()
		return db, nil, inmemdb.NewUserRepository(db), nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
