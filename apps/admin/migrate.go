package main

import (
	"context"

	"github.com/edumedsolutions/edumed/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQL
	}
	return migrateFunc(context.Background(), cli.db, args[0], args[1:]...)
}
