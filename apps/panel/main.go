package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/coursepanel/core"
	logsvc "github.com/trezcool/coursepanel/services/logger"
)

func main() {
	os.Exit(submain())
}

func submain() int {
	conf := core.NewConfig()

	level := logsvc.LevelWarn
	if conf.Debug {
		level = logsvc.LevelDebug
	}
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "PANEL : ", log.LstdFlags), level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(conf, logger)
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("panel command failed", err)
		return 1
	}
	return 0
}
