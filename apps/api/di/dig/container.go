package dig_container

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/classpoll/apps/api/echo"
	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/portal"
	"github.com/trezcool/classpoll/core/quiz"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/session"
	"github.com/trezcool/classpoll/core/state"
	"github.com/trezcool/classpoll/core/user"
	logsvc "github.com/trezcool/classpoll/services/logger"
	"github.com/trezcool/classpoll/services/quiz/gemini"
	"github.com/trezcool/classpoll/storage/database"
	"github.com/trezcool/classpoll/storage/database/inmem"
	"github.com/trezcool/classpoll/storage/database/pgrepos"
	"github.com/trezcool/classpoll/storage/session/boltslot"
)

// memoryEngine keeps every collection in memory; handy for demos, nothing survives a restart.
const memoryEngine = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage is the remote store behind the portal.
type Storage struct {
	Gateway gateway.Gateway
	close   func() error
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) (*Storage, error) {
	if conf.Database.Engine == memoryEngine {
		loggerParam.Logger.Warn("using the in-memory store: data is lost on exit")
		return &Storage{Gateway: inmemdb.Open().Gateway()}, nil
	}

	ctx := context.Background()
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{Gateway: pgrepos.NewGateway(db), close: db.Close}, nil
}

func newGateway(s *Storage) gateway.Gateway {
	return s.Gateway
}

func newSessionSlot(conf *core.Config) (*boltslot.Slot, error) {
	return boltslot.Open(conf.Session.Path)
}

func newSessionManager(conf *core.Config, slot *boltslot.Slot, logger core.Logger) *session.Manager {
	return session.NewManager(slot, conf.SecretKey, conf.Session.TTL, logger)
}

func newQuizGenerator(conf *core.Config, logger core.Logger) quiz.Generator {
	gen, err := gemini.New(context.Background(), conf)
	if err != nil {
		logger.Warn("poll proposals disabled", err)
		return quiz.Disabled{}
	}
	return gen
}

func newValidate(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newGateway))
	must(c.Provide(state.NewCache))
	must(c.Provide(newSessionSlot))
	must(c.Provide(newSessionManager))
	must(c.Provide(newQuizGenerator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidate))
	must(c.Provide(portal.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
