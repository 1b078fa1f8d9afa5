package main

import (
	"log"
	"os"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	emailsvc "github.com/trezcool/coursepanel/services/email"
	"github.com/trezcool/coursepanel/storage/database"
	sqlxrepos "github.com/trezcool/coursepanel/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	errAndDie(db.Ping())

	// start CLI
	translator := core.NewTranslator()
	cli := commandLine{
		db:       db.DB,
		usrRepo:  sqlxrepos.NewUserRepository(db),
		validate: core.NewValidator(translator),
		courseSvc: course.NewService(
			sqlxrepos.NewCourseRepository(db),
			llm.Default,
			emailsvc.NewConsoleService(conf),
			conf,
		),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
