package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
	b2files "github.com/trezcool/classpoll/services/files/b2"
	logsvc "github.com/trezcool/classpoll/services/logger"
	"github.com/trezcool/classpoll/storage/database"
	"github.com/trezcool/classpoll/storage/database/pgrepos"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	rollbarLogger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	defer rollbarLogger.Close()
	logger = rollbarLogger

	// set up DB
	db, err := database.Open(context.Background(), conf)
	errAndDie(err)
	defer db.Close()

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		gw:       pgrepos.NewGateway(db),
		validate: validate,
		openUploader: func(ctx context.Context) (uploader, error) {
			return b2files.Open(ctx, conf.B2)
		},
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin: command failed", err)
		}
		rollbarLogger.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal("admin: setup failed", err)
	}
}
