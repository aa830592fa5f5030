package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/user"
	"github.com/edumedsolutions/edumed/services/supabase"
	"github.com/edumedsolutions/edumed/storage/database"
	inmemdb "github.com/edumedsolutions/edumed/storage/database/inmem"
	sqlxrepos "github.com/edumedsolutions/edumed/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	cli := commandLine{validate: validate}

	switch conf.StoreBackend {
	case core.BackendPostgres:
		errAndDie(database.CreateIfNotExist(conf))
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()

		cli.db = db.DB
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db))
		cli.store = sqlxrepos.NewGateway(db)
	case core.BackendSupabase:
		mem := inmemdb.Open()
		cli.usrSvc = user.NewService(inmemdb.NewUserRepository(mem))
		cli.store = supabase.NewRecords(supabase.NewClient(conf))
	default:
		logger.Printf("store backend %q keeps nothing between runs", conf.StoreBackend)
		mem := inmemdb.Open()
		cli.usrSvc = user.NewService(inmemdb.NewUserRepository(mem))
		cli.store = inmemdb.NewGateway(mem)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
