package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/youwenshao/staffroom/apps/api/echo"
	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
	"github.com/youwenshao/staffroom/services/email"
	logsvc "github.com/youwenshao/staffroom/services/logger"
	"github.com/youwenshao/staffroom/storage/database"
	"github.com/youwenshao/staffroom/storage/database/plandb"
	"github.com/youwenshao/staffroom/storage/database/userdb"
	"github.com/youwenshao/staffroom/storage/object"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	appLogger := logsvc.NewRollbarLogger(std, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Migrate(db))

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}
	usrSvc := user.NewService(userdb.NewUserRepository(db), mailSvc, conf)
	planSvc := plan.NewService(plandb.NewPlanRepository(db))

	store, err := object.NewS3Store(context.Background(), conf)
	errAndDie(std, err)
	uploader := object.NewUploader(store, conf, appLogger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:     conf,
			Logger:   appLogger,
			UserSvc:  usrSvc,
			PlanSvc:  planSvc,
			Uploader: uploader,
		},
	)
	go app.Start()

	// =========================================================================
	// Shutdown

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var sig os.Signal
	select {
	case sig = <-quit:
	case sig = <-app.ShutdownSignal(): // unrecoverable request error
	}
	appLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
