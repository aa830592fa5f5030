package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/edumedsolutions/edumed/apps/api/echo"
	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/contact"
	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/portal"
	"github.com/edumedsolutions/edumed/core/session"
	"github.com/edumedsolutions/edumed/core/university"
	"github.com/edumedsolutions/edumed/core/user"
	authsvc "github.com/edumedsolutions/edumed/services/auth"
	emailsvc "github.com/edumedsolutions/edumed/services/email"
	logsvc "github.com/edumedsolutions/edumed/services/logger"
	"github.com/edumedsolutions/edumed/services/ratelimit"
	"github.com/edumedsolutions/edumed/services/supabase"
	"github.com/edumedsolutions/edumed/storage/database"
	inmemdb "github.com/edumedsolutions/edumed/storage/database/inmem"
	sqlxrepos "github.com/edumedsolutions/edumed/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Backends are the record store and the local accounts, picked from the config.
type Backends struct {
	dig.Out
	Store gateway.Gateway
	Users user.Repository
}

func newRollbarLogger(conf *core.Config) *logsvc.RollbarLogger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newLogger(logger *logsvc.RollbarLogger) core.Logger {
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB connects to postgres when it backs the store; it is nil otherwise.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.StoreBackend != core.BackendPostgres {
		return nil
	}
	db, err := database.Setup(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newBackends(conf *core.Config, db *sqlx.DB, client *supabase.Client) Backends {
	switch conf.StoreBackend {
	case core.BackendPostgres:
		return Backends{Store: sqlxrepos.NewGateway(db), Users: sqlxrepos.NewUserRepository(db)}
	case core.BackendSupabase:
		// accounts live in the hosted auth service; local ones only serve DEV sign-ins
		return Backends{Store: supabase.NewRecords(client), Users: inmemdb.NewUserRepository(inmemdb.Open())}
	default:
		mem := inmemdb.Open()
		return Backends{Store: inmemdb.NewGateway(mem), Users: inmemdb.NewUserRepository(mem)}
	}
}

func newAuthService(conf *core.Config, client *supabase.Client, users *user.Service, validate *validator.Validate) session.AuthService {
	if conf.AuthBackend == core.BackendSupabase {
		return supabase.NewAuthService(client)
	}
	return authsvc.NewLocalService(users, validate, conf)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newLimiter(conf *core.Config, logger core.Logger) ratelimit.Limiter {
	if conf.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter()
	}
	client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	return ratelimit.NewRedisLimiter(client, conf.AppName+":ratelimit", logger)
}

func newSessions(conf *core.Config, auth session.AuthService, store gateway.Gateway, logger core.Logger) *portal.Sessions {
	return portal.NewSessions(auth, store, logger, conf.RemoteTimeout, conf.Server.JWTExpirationDelta)
}

func newDirectory(conf *core.Config, store gateway.Gateway, logger core.Logger) *university.Directory {
	return university.NewDirectory(store, logger, conf.RemoteTimeout)
}

func newContactService(conf *core.Config, store gateway.Gateway, mailSvc core.EmailService, logger core.Logger) *contact.Service {
	return contact.NewService(store, mailSvc, conf, logger)
}

type serverParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Sessions   *portal.Sessions
	Directory  *university.Directory
	ContactSvc *contact.Service
	Limiter    ratelimit.Limiter
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		Sessions:   p.Sessions,
		Directory:  p.Directory,
		ContactSvc: p.ContactSvc,
		Limiter:    p.Limiter,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(supabase.NewClient))
	must(c.Provide(newBackends))
	must(c.Provide(user.NewService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newAuthService))
	must(c.Provide(newEmailService))
	must(c.Provide(newLimiter))
	must(c.Provide(newSessions))
	must(c.Provide(newDirectory))
	must(c.Provide(newContactService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
