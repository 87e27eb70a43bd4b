package main

import (
	"context"
	"errors"

	"github.com/semsync/semsync/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

var errNoMigrations = errors.New("migrations only apply to the postgres engine")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoMigrations
	}
	return gooseRunFunc(context.Background(), args[0], cli.db, args[1:]...)
}
